// Package report renders spacing metrics for humans: an ECharts HTML line
// chart over an event, a PNG court snapshot of a single moment, and a CSV
// export for bulk analysis.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/spacing"
)

// WriteSpacingChart renders an HTML line chart of hull area, pairwise spread
// and composite score across the event's moments. Degraded or undefined
// moments leave gaps rather than plotting as zeros.
func WriteSpacingChart(w io.Writer, title string, ev *game.Event, cfg spacing.Config) error {
	frames := make([]string, 0, ev.Len())
	hulls := make([]opts.LineData, 0, ev.Len())
	spreads := make([]opts.LineData, 0, ev.Len())
	scores := make([]opts.LineData, 0, ev.Len())

	for _, m := range ev.Moments() {
		frames = append(frames, fmt.Sprintf("%d", m.FrameIdx))
		if m.Degraded {
			hulls = append(hulls, opts.LineData{Value: nil})
			spreads = append(spreads, opts.LineData{Value: nil})
			scores = append(scores, opts.LineData{Value: nil})
			continue
		}
		snap := spacing.Compute(m, ev.OffensiveSide, cfg)
		if !snap.Defined {
			hulls = append(hulls, opts.LineData{Value: nil})
			spreads = append(spreads, opts.LineData{Value: nil})
			scores = append(scores, opts.LineData{Value: nil})
			continue
		}
		hulls = append(hulls, opts.LineData{Value: snap.HullArea})
		spreads = append(spreads, opts.LineData{Value: snap.AvgPairwise})
		scores = append(scores, opts.LineData{Value: snap.Score})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("event=%d offense=%s moments=%d", ev.ID, ev.OffensiveSide, ev.Len()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
	)

	line.SetXAxis(frames).
		AddSeries("hull area (sq ft)", hulls).
		AddSeries("avg pairwise (ft)", spreads).
		AddSeries("spacing score", scores)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render spacing chart: %w", err)
	}
	return nil
}
