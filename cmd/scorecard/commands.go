package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/radial"
	"github.com/bioradar/implementation-scorecard/internal/render"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

type options struct {
	catalog   string
	result    string
	responses string
	sectors   []string
	width     float64
	height    float64
	top       int
	out       string
	empty     bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "scorecard",
		Short:         "SDG implementation scorecard tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.out, "out", "-", "output file, - for stdout")

	pages := &cobra.Command{
		Use:   "pages",
		Short: "Group a catalog into complete questionnaire pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.LoadFile(o.catalog)
			if err != nil {
				return err
			}
			sectors := o.sectors
			if len(sectors) == 0 {
				sectors = cat.Sectors()
			}
			for i, s := range sectors {
				sectors[i] = scorecard.NormalizeSector(s, "")
			}
			return o.writeJSON(cmd, scorecard.BuildPages(cat.Rows(), sectors))
		},
	}
	pages.Flags().StringVar(&o.catalog, "catalog", "", "catalog JSON file")
	pages.Flags().StringSliceVar(&o.sectors, "sector", nil, "active sectors (default: all in the catalog)")
	_ = pages.MarkFlagRequired("catalog")

	score := &cobra.Command{
		Use:   "score",
		Short: "Attach responses to a catalog and group the scored rows by sector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.LoadFile(o.catalog)
			if err != nil {
				return err
			}
			var resp []scorecard.Response
			if o.responses != "" {
				if err := readJSON(o.responses, &resp); err != nil {
					return err
				}
			}
			res := scorecard.ScoreResponses(scorecard.Submission{Responses: resp, Questions: cat.Questions, Sector: cat.Sector})
			return o.writeJSON(cmd, map[string]any{"success": true, "data": res})
		},
	}
	score.Flags().StringVar(&o.catalog, "catalog", "", "catalog JSON file")
	score.Flags().StringVar(&o.responses, "responses", "", "JSON list of {question_id, score}")
	_ = score.MarkFlagRequired("catalog")

	aggregate := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate one sector of a result into the 68-cell grid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, _, err := o.grid()
			if err != nil {
				return err
			}
			return o.writeJSON(cmd, g)
		},
	}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Summarize one sector of a result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, _, err := o.grid()
			if err != nil {
				return err
			}
			return o.writeJSON(cmd, scorecard.Summarize(g, o.top))
		},
	}
	summary.Flags().IntVar(&o.top, "top", 2, "number of top and bottom goals")

	layout := &cobra.Command{
		Use:   "layout",
		Short: "Compute the radial geometry of one sector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, _, err := o.grid()
			if err != nil {
				return err
			}
			return o.writeJSON(cmd, radial.Build(g, o.size(), radial.DefaultOptions()))
		},
	}

	draw := &cobra.Command{
		Use:   "render",
		Short: "Draw one sector as SVG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, sector, err := o.grid()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			err = render.SVG(&buf, g, o.size(), render.SVGOptions{
				Layout:    radial.DefaultOptions(),
				ShowEmpty: o.empty,
				Title:     sector,
			})
			if err != nil {
				return err
			}
			return o.write(cmd, buf.Bytes())
		},
	}
	draw.Flags().BoolVar(&o.empty, "empty", false, "draw unscored levels muted")

	chart := &cobra.Command{
		Use:   "chart",
		Short: "Write an HTML summary chart of one sector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, sector, err := o.grid()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := render.SummaryPage(&buf, sector, scorecard.Summarize(g, o.top)); err != nil {
				return err
			}
			return o.write(cmd, buf.Bytes())
		},
	}
	chart.Flags().IntVar(&o.top, "top", 2, "number of top and bottom goals")

	for _, c := range []*cobra.Command{aggregate, summary, layout, draw, chart} {
		c.Flags().StringVar(&o.result, "result", "", "result JSON file (plain or {\"data\": ...})")
		c.Flags().StringSliceVar(&o.sectors, "sector", nil, "sector to aggregate")
		_ = c.MarkFlagRequired("result")
		_ = c.MarkFlagRequired("sector")
	}
	for _, c := range []*cobra.Command{layout, draw} {
		c.Flags().Float64Var(&o.width, "width", 600, "container width")
		c.Flags().Float64Var(&o.height, "height", 600, "container height")
	}

	root.AddCommand(pages, score, aggregate, summary, layout, draw, chart)
	return root
}

func (o *options) size() radial.Size { return radial.Size{Width: o.width, Height: o.height} }

// grid reads the result file and aggregates the first --sector.
func (o *options) grid() (scorecard.Grid, string, error) {
	res, err := readResult(o.result)
	if err != nil {
		return nil, "", err
	}
	sector := ""
	if len(o.sectors) > 0 {
		sector = o.sectors[0]
	}
	sector = scorecard.NormalizeSector(sector, "")
	g, err := scorecard.Aggregate(res.Rows(sector), sector)
	return g, sector, err
}

func readResult(path string) (scorecard.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err == nil && len(env.Data) > 0 {
		b = env.Data
	}
	var res scorecard.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (o *options) writeJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return o.write(cmd, append(b, '\n'))
}

func (o *options) write(cmd *cobra.Command, b []byte) error {
	if o.out == "" || o.out == "-" {
		_, err := cmd.OutOrStdout().Write(b)
		return err
	}
	return writeFile(o.out, bytes.NewReader(b))
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
