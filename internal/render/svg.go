// Package render draws radial scorecards as SVG and score summaries as
// ECharts pages.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/bioradar/implementation-scorecard/internal/radial"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

// DimensionColors fills the segments of each dimension.
var DimensionColors = map[scorecard.Dimension]string{
	scorecard.Economic:      "#e9a23b",
	scorecard.Circular:      "#3c9d9b",
	scorecard.Environmental: "#5b9a48",
	scorecard.Social:        "#c8553d",
}

const (
	mutedFill  = "#eceff1"
	guideColor = "#b0bec5"
)

type SVGOptions struct {
	Layout radial.Options
	// ShowEmpty draws the unscored levels of every cell in a muted fill.
	ShowEmpty bool
	// HideLabels skips the goal numbers around the rim.
	HideLabels bool
	Title      string
}

// SVG writes the scorecard for grid at size. An unusable size produces an
// empty document of that size.
func SVG(w io.Writer, grid scorecard.Grid, size radial.Size, o SVGOptions) error {
	width, height := pixels(size.Width), pixels(size.Height)
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	if o.Title != "" {
		canvas.Title(o.Title)
	}

	e, ok := radial.New(size, o.Layout)
	if ok {
		f := e.Frame()
		canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(f.CenterX), num(f.CenterY)))

		if o.ShowEmpty {
			canvas.Gid("empty")
			for _, c := range grid {
				if !c.Dimension.Valid() {
					continue
				}
				for level := c.Score + 1; level <= scorecard.MaxScore; level++ {
					canvas.Path(annulus(e.Segment(c.Goal, c.Dimension, level)), "fill:"+mutedFill+";stroke:#fff;stroke-width:0.5")
				}
			}
			canvas.Gend()
		}

		canvas.Gid("segments")
		for _, s := range e.Segments(grid) {
			canvas.Path(annulus(s), fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:0.5", DimensionColors[s.Dimension]),
				`data-goal="`+strconv.Itoa(s.Goal)+`"`, `data-level="`+strconv.Itoa(s.Level)+`"`)
		}
		canvas.Gend()

		canvas.Gid("frame")
		for _, r := range f.Rings {
			canvas.Path(circle(r), "fill:none;stroke:"+guideColor+";stroke-width:0.5")
		}
		if !o.HideLabels {
			for _, wd := range f.Wedges {
				canvas.Text(int(math.Round(wd.LabelX)), int(math.Round(wd.LabelY)), strconv.Itoa(wd.Goal),
					"font-family:sans-serif;font-size:11px;text-anchor:middle;dominant-baseline:middle;fill:#37474f")
			}
		}
		canvas.Gend()

		canvas.Gend()
	}
	canvas.End()
	return ew.err
}

// annulus is the closed path of a ring sector around the origin.
func annulus(s radial.Segment) string {
	x0, y0 := radial.Point(s.StartAngle, s.OuterRadius)
	x1, y1 := radial.Point(s.EndAngle, s.OuterRadius)
	x2, y2 := radial.Point(s.EndAngle, s.InnerRadius)
	x3, y3 := radial.Point(s.StartAngle, s.InnerRadius)
	large := 0
	if s.EndAngle-s.StartAngle > math.Pi {
		large = 1
	}
	ro, ri := num(s.OuterRadius), num(s.InnerRadius)
	return fmt.Sprintf("M%s %s A%s %s 0 %d 1 %s %s L%s %s A%s %s 0 %d 0 %s %s Z",
		num(x0), num(y0), ro, ro, large, num(x1), num(y1),
		num(x2), num(y2), ri, ri, large, num(x3), num(y3))
}

func circle(r float64) string {
	s := num(r)
	return fmt.Sprintf("M0 -%s A%s %s 0 1 1 0 %s A%s %s 0 1 1 0 -%s Z", s, s, s, s, s, s, s)
}

func num(f float64) string {
	if math.Abs(f) < 5e-4 {
		f = 0
	}
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// maxPixels bounds the canvas attributes written for absurd sizes.
const maxPixels = 1 << 20

func pixels(f float64) int {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= maxPixels {
		return maxPixels
	}
	return int(math.Round(f))
}

// errWriter keeps the first write error; svgo itself ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
