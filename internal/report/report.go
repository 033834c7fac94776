package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"polybot/internal/gateway/database"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Generate renders the recent trade outcomes as an HTML performance report
// (cumulative profit plus per-trade position size) and returns its path.
func Generate(dir string, outcomes []database.StoredOutcome) (string, error) {
	if len(outcomes) == 0 {
		return "", fmt.Errorf("no outcomes to report")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	// Store returns newest first; plot oldest first.
	ordered := make([]database.StoredOutcome, len(outcomes))
	for i, o := range outcomes {
		ordered[len(outcomes)-1-i] = o
	}

	labels := make([]string, 0, len(ordered))
	cumulative := make([]opts.LineData, 0, len(ordered))
	sizes := make([]opts.BarData, 0, len(ordered))
	running := 0.0
	for _, o := range ordered {
		labels = append(labels, o.Timestamp.Format("01-02 15:04"))
		running += o.Profit
		cumulative = append(cumulative, opts.LineData{Value: running})
		sizes = append(sizes, opts.BarData{Value: o.PositionSize})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Trading Performance",
			Subtitle: fmt.Sprintf("%d trades, net %.2f", len(ordered), running),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(labels).
		AddSeries("cumulative profit", cumulative)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Position Sizes"}),
	)
	bar.SetXAxis(labels).
		AddSeries("position size", sizes)

	path := filepath.Join(dir, fmt.Sprintf("performance-%s.html", time.Now().Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	page := components.NewPage()
	page.AddCharts(line, bar)
	if err := page.Render(f); err != nil {
		return "", err
	}
	return path, nil
}
