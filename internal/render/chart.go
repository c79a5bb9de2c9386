package render

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

// SummaryPage writes an HTML page with the dimension and goal percentages
// of summary as bar charts.
func SummaryPage(w io.Writer, sector string, summary scorecard.Summary) error {
	dims := charts.NewBar()
	dims.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: sector + " scorecard", Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Dimensions", Subtitle: sector}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "%"}),
	)
	dimNames := make([]string, 0, len(summary.PerDimension))
	dimData := make([]opts.BarData, 0, len(summary.PerDimension))
	for _, d := range summary.PerDimension {
		dimNames = append(dimNames, string(d.Dimension))
		dimData = append(dimData, opts.BarData{
			Value:     d.Percentage,
			ItemStyle: &opts.ItemStyle{Color: DimensionColors[d.Dimension]},
		})
	}
	dims.SetXAxis(dimNames).
		AddSeries("percentage", dimData,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	goals := charts.NewBar()
	goals.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Goals"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "%"}),
	)
	goalNames := make([]string, 0, len(summary.Goals))
	goalData := make([]opts.BarData, 0, len(summary.Goals))
	for _, g := range summary.Goals {
		goalNames = append(goalNames, "SDG "+strconv.Itoa(g.Goal))
		goalData = append(goalData, opts.BarData{Name: g.Description, Value: g.Percentage})
	}
	goals.SetXAxis(goalNames).AddSeries("percentage", goalData)

	page := components.NewPage()
	page.PageTitle = sector + " scorecard"
	page.AddCharts(dims, goals)
	return page.Render(w)
}
