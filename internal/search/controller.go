package search

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run executes one search over f and returns the ordered result. The
// returned error is fatal (I/O, mapping, invalid pattern, or a worker
// failure); a clean scan with no matches is not an error, it is a Result
// with StatusNotFound.
//
// Cancelling ctx stops the run at the next shard boundary.
func Run(ctx context.Context, f *File, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	if f.size == 0 {
		return &Result{Status: StatusNotFound, Stats: Stats{Resident: -1, Elapsed: time.Since(start)}}, nil
	}

	parent := ctx

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prm := newPrimer(f, cfg)
	units := make(chan workUnit, cfg.Workers*2)
	results := make(chan shardResult, cfg.Workers*2)

	pool := new(errgroup.Group)
	for range cfg.Workers {
		pool.Go(func() error {
			worker(ctx, units, results, &cfg)

			return nil
		})
	}

	agg := newAggregator(cfg.First, cancel)
	aggDone := make(chan struct{})

	go func() {
		defer close(aggDone)
		agg.run(results)
	}()

	resident, produceErr := produce(ctx, f, cfg, prm, units)

	close(units)
	_ = pool.Wait()
	close(results)
	<-aggDone

	switch {
	case agg.err != nil:
		return nil, agg.err
	case produceErr != nil:
		return nil, produceErr
	case !agg.finalized && parent.Err() != nil:
		return nil, parent.Err()
	}

	res := &Result{
		Matches: agg.matches,
		Stats: Stats{
			BytesScanned:  agg.bytesScanned,
			LinesScanned:  agg.linesScanned,
			WindowsPrimed: prm.windowsPrimed.Load(),
			Resident:      resident,
			AdviseErrors:  prm.adviseErrs.Load(),
			Elapsed:       time.Since(start),
		},
	}

	if len(res.Matches) > 0 {
		res.Status = StatusFound
	}

	return res, nil
}

// produce drives the window pipeline: prime window k+1 while window k is
// mapped, sharded, and scanned, then drop window k from cache once its
// shards have drained. At most two windows are staged at any moment.
//
// Returns the page-cache residency of the first window at map time
// (negative if unmeasurable) and the first fatal error. Cancellation is not
// an error here; the controller decides what it meant.
func produce(ctx context.Context, f *File, cfg Config, prm *primer, units chan<- workUnit) (float64, error) {
	resident := float64(-1)
	wins := windows(f.size, cfg.CacheSize)
	shr := newSharder(cfg.ShardSize)
	log := cfg.Logger

	prm.prime(ctx, wins[0])

	var primeDone chan struct{}

	// A priming goroutine reads from f; never return while one is running.
	defer func() {
		if primeDone != nil {
			<-primeDone
		}
	}()

	for k, w := range wins {
		if ctx.Err() != nil {
			return resident, nil
		}

		if primeDone != nil {
			<-primeDone
			primeDone = nil
		}

		if k+1 < len(wins) {
			next, done := wins[k+1], make(chan struct{})
			primeDone = done

			go func() {
				defer close(done)
				prm.prime(ctx, next)
			}()
		}

		region, err := f.mapRange(w.start, w.end)
		if err != nil {
			return resident, err
		}

		if k == 0 {
			if r, rerr := region.resident(); rerr == nil {
				resident = r
			}
		}

		shards := shr.split(region.Bytes(), w.start, k == len(wins)-1)

		var drain sync.WaitGroup

		drain.Add(len(shards))

		sent := 0

	enqueue:
		for _, sh := range shards {
			select {
			case units <- workUnit{shard: sh, wg: &drain}:
				sent++
			case <-ctx.Done():
				break enqueue
			}
		}

		for range len(shards) - sent {
			drain.Done()
		}

		// The region must outlive every shard cut from it.
		drain.Wait()

		closeErr := region.Close()

		if !cfg.KeepCache && k+1 < len(wins) {
			prm.drop(w)
		}

		log.Debug("window scanned",
			"window", k, "start", w.start, "end", w.end, "shards", len(shards))

		if closeErr != nil {
			return resident, &MapError{Start: w.start, End: w.end, Err: closeErr}
		}
	}

	return resident, nil
}
