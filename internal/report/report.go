// Package report renders a batch run as a standalone HTML page so
// per-sequence throughput can be eyeballed after a run.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/openmot/trackbench/internal/fsutil"
	"github.com/openmot/trackbench/internal/pipeline"
)

// Writer renders batch results to an HTML report file.
type Writer struct {
	fs fsutil.FileSystem
}

// NewWriter constructs a report writer over fs.
func NewWriter(fs fsutil.FileSystem) *Writer {
	return &Writer{fs: fs}
}

// Write renders batch as an HTML page at path. Skipped and failed
// sequences appear with zero throughput so gaps are visible.
func (w *Writer) Write(path, detector string, batch pipeline.BatchResult) error {
	html, err := Render(detector, batch)
	if err != nil {
		return err
	}
	if err := w.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := w.fs.WriteFile(path, html, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// Render produces the report HTML for batch.
func Render(detector string, batch pipeline.BatchResult) ([]byte, error) {
	names := make([]string, 0, len(batch.Results))
	fps := make([]opts.BarData, 0, len(batch.Results))
	frames := make([]opts.BarData, 0, len(batch.Results))
	for _, res := range batch.Results {
		label := res.Sequence
		if res.Skipped {
			label += " (skipped)"
		} else if res.Err != nil {
			label += " (failed)"
		}
		names = append(names, label)
		fps = append(fps, opts.BarData{Value: res.Throughput()})
		frames = append(frames, opts.BarData{Value: res.FrameCount})
	}

	subtitle := fmt.Sprintf("detector=%s sequences=%d frames=%d total=%dms overall=%.1ffps",
		detector, len(batch.Results), batch.TotalFrames,
		batch.TotalDuration.Milliseconds(), batch.Throughput())

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Tracking Benchmark", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Per-Sequence Throughput", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "fps"}),
	)
	bar.SetXAxis(names).
		AddSeries("fps", fps,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	framesBar := charts.NewBar()
	framesBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Per-Sequence Frames"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	framesBar.SetXAxis(names).AddSeries("frames", frames)

	page := components.NewPage()
	page.AddCharts(bar, framesBar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
