package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/openmot/trackbench/internal/fsutil"
)

// ReadSequenceList parses the line-oriented batch input: one sequence
// identifier per line. Blank lines and lines starting with '#' are
// ignored; surrounding whitespace is trimmed.
func ReadSequenceList(fsys fsutil.FileSystem, path string) ([]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequence list %s: %w", path, err)
	}

	var sequences []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sequences = append(sequences, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan sequence list %s: %w", path, err)
	}
	return sequences, nil
}

// BatchResult aggregates a whole run. Totals are sums over sequences, so
// the aggregate throughput weighs longer sequences correctly instead of
// averaging per-sequence rates.
type BatchResult struct {
	Results       []SequenceResult
	TotalFrames   int
	TotalDuration time.Duration
	Failed        int
}

// Throughput returns the batch-level frames per second.
func (r BatchResult) Throughput() float64 {
	return Throughput(r.TotalFrames, r.TotalDuration)
}

// AllLatenciesMs concatenates the per-frame latency samples of every
// sequence, for batch-level percentile reporting.
func (r BatchResult) AllLatenciesMs() []float64 {
	var all []float64
	for _, res := range r.Results {
		all = append(all, res.LatenciesMs...)
	}
	return all
}

// BatchDriver runs the full pipeline over an ordered list of sequences
// and reports per-sequence and aggregate throughput.
type BatchDriver struct {
	Runner *SequenceRunner

	// Workers is the number of sequences processed concurrently. Frames
	// within a sequence always stay ordered; only independent sequences
	// run in parallel, each with its own tracker. Values below 2 keep
	// the original strictly sequential behaviour.
	Workers int

	// Output receives the console report.
	Output io.Writer
}

// Run processes every sequence and folds the results, in listed order,
// into batch totals. A failing sequence is reported and counted but does
// not stop the batch.
func (b *BatchDriver) Run(ctx context.Context, sequences []string) BatchResult {
	results := make([]SequenceResult, len(sequences))

	if b.Workers > 1 {
		b.runParallel(ctx, sequences, results)
	} else {
		for i, seq := range sequences {
			results[i] = b.Runner.Run(ctx, seq)
		}
	}

	batch := BatchResult{Results: results}
	for _, res := range results {
		b.reportSequence(res)
		batch.TotalFrames += res.FrameCount
		batch.TotalDuration += res.Duration
		if res.Err != nil {
			batch.Failed++
		}
	}
	b.reportBatch(batch)
	return batch
}

func (b *BatchDriver) runParallel(ctx context.Context, sequences []string, results []SequenceResult) {
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < b.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.Runner.Run(ctx, sequences[i])
			}
		}()
	}

	for i := range sequences {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (b *BatchDriver) reportSequence(res SequenceResult) {
	fmt.Fprintf(b.Output, "Sequence: %s\n", res.Sequence)
	switch {
	case res.Err != nil:
		fmt.Fprintf(b.Output, "Failed: %v\n", res.Err)
	case res.Skipped:
		fmt.Fprintf(b.Output, "Output already exists; skipping\n")
	default:
		fmt.Fprintf(b.Output, "Duration: %dms (%.1ffps)\n",
			res.Duration.Milliseconds(), res.Throughput())
	}
}

func (b *BatchDriver) reportBatch(batch BatchResult) {
	fmt.Fprintf(b.Output, "Total duration: %dms (%.1ffps)\n",
		batch.TotalDuration.Milliseconds(), batch.Throughput())

	if lat := batch.AllLatenciesMs(); len(lat) > 0 {
		fmt.Fprintf(b.Output, "Frame latency: p50 %.1fms, p95 %.1fms\n",
			LatencyPercentile(lat, 0.5), LatencyPercentile(lat, 0.95))
	}
	if batch.Failed > 0 {
		fmt.Fprintf(b.Output, "Failed sequences: %d\n", batch.Failed)
	}
}
