package pipeline

import (
	"context"
	"sync"
)

// Summary totals the outcomes of a Run. Its image counts match what the
// Sink was told: Images is processed plus Skipped plus Failed, and an image
// the run never started is not counted.
type Summary struct {
	Images   int
	Skipped  int
	Failed   int
	Labelled int
	Saved    int
}

func (s *Summary) add(o Outcome) {
	switch {
	case o.Failed:
		s.Failed++
	case o.Skipped:
		s.Skipped++
	case !o.Located:
		return
	}
	s.Images++
	s.Labelled += o.Labelled
	s.Saved += o.Saved
}

// Run processes paths with the given number of workers. Per-image failures
// are logged and counted. Cancelling ctx stops new images from starting;
// Run then returns ctx.Err().
func (p *Pipeline) Run(ctx context.Context, paths []string, workers int) (Summary, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu  sync.Mutex
		sum Summary
	)
	record := func(path string, o Outcome, err error) {
		if err != nil && ctx.Err() == nil {
			p.log.Error("image failed", "image", path, "err", err)
		}
		mu.Lock()
		sum.add(o)
		mu.Unlock()
	}

	if workers == 1 {
		for _, path := range paths {
			if ctx.Err() != nil {
				break
			}
			o, err := p.ProcessImage(ctx, path)
			record(path, o, err)
		}
		return sum, ctx.Err()
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				o, err := p.ProcessImage(ctx, path)
				record(path, o, err)
			}
		}()
	}

dispatch:
	for _, path := range paths {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	return sum, ctx.Err()
}
