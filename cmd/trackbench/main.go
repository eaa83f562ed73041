// Command trackbench runs a detect-and-track benchmark over a list of
// image sequences, writing one trajectory artifact per sequence and
// reporting per-sequence and aggregate throughput.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openmot/trackbench/internal/config"
	"github.com/openmot/trackbench/internal/detect"
	"github.com/openmot/trackbench/internal/fsutil"
	"github.com/openmot/trackbench/internal/mot"
	"github.com/openmot/trackbench/internal/pipeline"
	"github.com/openmot/trackbench/internal/report"
	"github.com/openmot/trackbench/internal/store"
	"github.com/openmot/trackbench/internal/timeutil"
	"github.com/openmot/trackbench/internal/track"
)

func main() {
	var cfg config.Config
	flag.StringVar(&cfg.SequencesFile, "s", "", "file listing sequence names, one per line (required)")
	flag.StringVar(&cfg.ModelConfigFile, "m", "", "model config file for the DNN detector (default: random detector)")
	flag.StringVar(&cfg.DataDir, "data", "data", "root directory holding sequence image directories")
	flag.StringVar(&cfg.ModelsDir, "models", "models", "root directory for model definition and weight files")
	flag.StringVar(&cfg.ResultsDir, "results", "", "output directory for trajectory files (default: <data>/results)")
	flag.IntVar(&cfg.Workers, "workers", 1, "number of sequences processed concurrently")
	flag.StringVar(&cfg.HistoryDB, "db", "", "optional sqlite file for run history")
	flag.StringVar(&cfg.ReportFile, "report", "", "optional output path for an HTML throughput report")
	seed := flag.Uint64("seed", 1, "seed for the random detector")
	history := flag.Int("history", 0, "print the last N runs from the history database and exit")
	flag.Parse()

	if *history > 0 {
		if cfg.HistoryDB == "" {
			log.Fatal("-history requires -db")
		}
		if err := printHistory(cfg.HistoryDB, *history); err != nil {
			log.Fatalf("run history: %v", err)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := fsutil.OSFileSystem{}

	detector, configName, err := buildDetector(fs, cfg, *seed)
	if err != nil {
		log.Fatalf("detector setup: %v", err)
	}
	if closer, ok := detector.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	sequences, err := pipeline.ReadSequenceList(fs, cfg.SequencesFile)
	if err != nil {
		log.Fatalf("sequence list: %v", err)
	}
	if len(sequences) == 0 {
		log.Fatalf("sequence list %s is empty", cfg.SequencesFile)
	}

	driver := &pipeline.BatchDriver{
		Runner: &pipeline.SequenceRunner{
			FS:         fs,
			Clock:      timeutil.RealClock{},
			Detector:   detector,
			NewTracker: func() mot.Tracker { return track.NewIOUTracker(track.DefaultTrackerConfig()) },
			DataDir:    cfg.DataDir,
			ResultsDir: cfg.ResultsDir,
			ConfigName: configName,
		},
		Workers: cfg.Workers,
		Output:  os.Stdout,
	}

	batch := driver.Run(ctx, sequences)

	if cfg.HistoryDB != "" {
		if err := saveHistory(cfg.HistoryDB, detector.Name(), batch); err != nil {
			log.Printf("run history: %v", err)
		}
	}
	if cfg.ReportFile != "" {
		if err := report.NewWriter(fs).Write(cfg.ReportFile, detector.Name(), batch); err != nil {
			log.Printf("report: %v", err)
		} else {
			log.Printf("report written to %s", cfg.ReportFile)
		}
	}

	if err := ctx.Err(); err != nil {
		log.Fatalf("interrupted: %v", err)
	}
	if batch.Failed > 0 {
		os.Exit(1)
	}
}

// buildDetector selects the DNN detector when a model config is given
// and the random detector otherwise. The returned name keys the output
// directory, so runs with different detectors never collide.
func buildDetector(fs fsutil.FileSystem, cfg config.Config, seed uint64) (mot.Detector, string, error) {
	if cfg.ModelConfigFile == "" {
		rc := detect.DefaultRandomDetectorConfig()
		rc.Seed = seed
		d := detect.NewRandomDetector(rc)
		return d, d.Name(), nil
	}

	mc, err := config.LoadModelConfig(fs, cfg.ModelConfigFile, cfg.ModelsDir)
	if err != nil {
		return nil, "", err
	}
	d, err := detect.NewDNNDetector(mc)
	if err != nil {
		return nil, "", err
	}
	return d, mc.Name, nil
}

func printHistory(path string, limit int) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.RecentRuns(limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  detector=%s sequences=%d failed=%d frames=%d %dms (%.1ffps)\n",
			time.Unix(0, r.CreatedAt).Format(time.RFC3339), r.RunID,
			r.Detector, r.Sequences, r.Failed, r.TotalFrames, r.DurationMs, r.FPS)
	}
	return nil
}

func saveHistory(path, detector string, batch pipeline.BatchResult) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	runID, err := s.SaveBatch(detector, batch)
	if err != nil {
		return err
	}
	log.Printf("run %s saved to %s", runID, path)
	return nil
}
