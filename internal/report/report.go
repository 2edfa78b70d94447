// Package report renders a fragmentation run from its database into a
// standalone HTML page of charts.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/rubble/internal/storage/sqlite"
)

var fateOrder = []string{"persistent", "recursive", "pooled"}

// Generate renders the charts for one run into w.
func Generate(db *sqlite.DB, runID int64, w io.Writer) error {
	info, err := db.Run(runID)
	if err != nil {
		return err
	}
	counts, err := db.FateCounts(runID)
	if err != nil {
		return err
	}
	samples, err := db.FragmentSamples(runID)
	if err != nil {
		return err
	}
	durations, err := db.SliceDurationsUs(runID)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Fragmentation run %d", runID)
	page.AddCharts(
		fateChart(info, counts),
		ratioChart(samples),
		durationChart(durations),
	)
	return page.Render(w)
}

// GenerateFile renders the charts for one run into an HTML file at path.
func GenerateFile(db *sqlite.DB, runID int64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return Generate(db, runID, f)
}

// fateChart is a bar chart of fragments per fate class.
func fateChart(info *sqlite.RunInfo, counts map[string]int64) components.Charter {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Fragment fates",
			Subtitle: fmt.Sprintf("run=%d seed=%d max_depth=%d activated=%d",
				info.RunID, info.Seed, info.MaxDepth, info.FragmentsActivated),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.BarData, 0, len(fateOrder))
	for _, fate := range fateOrder {
		data = append(data, opts.BarData{Value: counts[fate]})
	}
	bar.SetXAxis(fateOrder).AddSeries("fragments", data)
	return bar
}

// ratioChart is a scatter of volume ratio against fragmentation depth.
func ratioChart(samples []sqlite.FragmentSample) components.Charter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Volume ratio by depth"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "depth", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "volume ratio", Type: "value"}),
	)

	data := make([]opts.ScatterData, 0, len(samples))
	for _, s := range samples {
		data = append(data, opts.ScatterData{Value: []interface{}{s.Depth, s.VolumeRatio}})
	}
	scatter.AddSeries("fragments", data,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	return scatter
}

// durationChart is a line of per-slice durations in completion order.
func durationChart(durations []int64) components.Charter {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Slice durations (µs)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	xs := make([]int, len(durations))
	data := make([]opts.LineData, 0, len(durations))
	for i, d := range durations {
		xs[i] = i + 1
		data = append(data, opts.LineData{Value: d})
	}
	line.SetXAxis(xs).AddSeries("duration", data)
	return line
}
