// Package recognize drives screenshot recognition: a bounded worker pool
// feeds table crops to the recognition capability under a shared rate
// limiter, retries transient failures with exponential backoff, and emits a
// serialized event stream while staying cancellable between work units.
package recognize

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"unveil/internal/dump"
	"unveil/internal/logging"
	"unveil/internal/recogcache"
	"unveil/internal/vision"
)

const (
	defaultMaxConcurrency = 5
	defaultCallsPerMinute = 50
	defaultMaxAttempts    = 5
	defaultBaseDelay      = 2 * time.Second
)

// Options configures a Processor. The zero value is usable; every field has
// a sensible default.
type Options struct {
	// MaxConcurrency bounds the worker pool size.
	MaxConcurrency int
	// CallsPerMinute caps recognition request starts per rolling minute.
	CallsPerMinute int
	// Tolerance is the per-channel color tolerance for layout detection.
	Tolerance int
	// MaxAttempts bounds retries of transient recognition failures.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff between retries.
	BaseDelay time.Duration
	// Hints are the few-shot examples sent with every recognition call.
	Hints vision.FewShot
	// Cache, when non-nil, is consulted before any recognition call and
	// updated after each success. Cache errors degrade to cache misses.
	Cache *recogcache.Store
	// Observer receives the event stream. Nil means no events.
	Observer Observer
	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}

// Processor turns a batch of screenshot paths into recognition results.
// A Processor is single-use: construct one per Process call.
type Processor struct {
	capability vision.Capability
	opts       Options
	limiter    *rate.Limiter
	logger     *slog.Logger
	observer   Observer

	cancelled atomic.Bool

	emitMu sync.Mutex

	mu          sync.Mutex
	admitCancel context.CancelFunc
	results     []dump.Result
	failures    []dump.Failure
	done        int
	cached      int
}

// NewProcessor constructs a processor around the given capability.
func NewProcessor(capability vision.Capability, opts Options) *Processor {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	if opts.CallsPerMinute <= 0 {
		opts.CallsPerMinute = defaultCallsPerMinute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		capability: capability,
		opts:       opts,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.CallsPerMinute)), 1),
		logger:     logging.NewComponentLogger(logger, "recognize"),
		observer:   observer,
	}
}

// Process works through the screenshot paths and returns the accumulated
// results and failures. Completion order is unrelated to input order. Every
// input yields exactly one terminal outcome unless the run is cancelled, in
// which case inputs that never started yield none and the accumulated work
// is returned as-is.
func (p *Processor) Process(ctx context.Context, paths []string) ([]dump.Result, []dump.Failure) {
	started := time.Now()
	total := len(paths)
	workers := p.opts.MaxConcurrency
	if workers > total {
		workers = total
	}

	// Admission waits are cancellable via Cancel; the recognition calls
	// themselves run on the caller's context so an in-flight request is
	// never interrupted mid-call.
	admitCtx, admitCancel := context.WithCancel(ctx)
	defer admitCancel()
	p.mu.Lock()
	p.admitCancel = admitCancel
	p.mu.Unlock()

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if p.cancelled.Load() || ctx.Err() != nil {
					continue
				}
				p.processOne(ctx, admitCtx, path, total)
			}
		}()
	}

feed:
	for _, path := range paths {
		select {
		case jobs <- path:
		case <-admitCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	p.mu.Lock()
	results := append([]dump.Result(nil), p.results...)
	failures := append([]dump.Failure(nil), p.failures...)
	cached := p.cached
	p.admitCancel = nil
	p.mu.Unlock()

	summary := Summary{
		Total:     total,
		Succeeded: len(results),
		Failed:    len(failures),
		Cached:    cached,
		Cancelled: p.cancelled.Load() || ctx.Err() != nil,
		Elapsed:   time.Since(started),
	}
	p.emit(func(o Observer) { o.Summary(summary) })
	p.logger.Info("recognition run finished",
		logging.Int("total", summary.Total),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("cached", summary.Cached),
		logging.Bool("cancelled", summary.Cancelled),
		logging.Duration("elapsed", summary.Elapsed))
	return results, failures
}

// Cancel requests a cooperative stop. It is safe from any goroutine and
// takes effect before the next work unit starts; in-flight recognition
// calls run to completion and still produce their outcomes.
func (p *Processor) Cancel() {
	p.cancelled.Store(true)
	p.mu.Lock()
	cancel := p.admitCancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Cancelled reports whether Cancel has been invoked.
func (p *Processor) Cancelled() bool {
	return p.cancelled.Load()
}

func (p *Processor) recordResult(result dump.Result, fromCache bool, total int) {
	p.mu.Lock()
	p.results = append(p.results, result)
	if fromCache {
		p.cached++
	}
	p.done++
	done := p.done
	p.mu.Unlock()
	p.emit(func(o Observer) {
		o.Result(result)
		o.Progress(done, total, result.Filename)
	})
}

func (p *Processor) recordFailure(failure dump.Failure, total int) {
	p.mu.Lock()
	p.failures = append(p.failures, failure)
	p.done++
	done := p.done
	p.mu.Unlock()
	p.emit(func(o Observer) {
		o.Failure(failure)
		o.Progress(done, total, failure.Filename)
	})
}

func (p *Processor) emit(fn func(Observer)) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	fn(p.observer)
}

// callWithRetry invokes the capability once per attempt, retrying only
// failures the vision package classifies as transient. The delay doubles per
// attempt unless the service named a Retry-After interval. Cancellation
// during a backoff wait demotes the item to a failure rather than leaving it
// without an outcome, since its work already started.
func (p *Processor) callWithRetry(ctx, admitCtx context.Context, crops []cropSet) ([]string, error) {
	var lastErr error
	delay := p.opts.BaseDelay
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		if err := p.limiter.Wait(admitCtx); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}
		names, err := p.capability.Recognize(ctx, cropImages(crops), p.opts.Hints)
		if err == nil {
			return names, nil
		}
		lastErr = err
		if !vision.IsTransient(err) {
			return nil, err
		}
		if attempt == p.opts.MaxAttempts {
			break
		}
		wait := delay
		if hinted, ok := vision.RetryAfter(err); ok {
			wait = hinted
		}
		p.logger.Warn("transient recognition failure, backing off",
			logging.Int("attempt", attempt),
			logging.Duration("delay", wait),
			logging.Error(err))
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-admitCtx.Done():
			timer.Stop()
			return nil, lastErr
		}
		delay *= 2
	}
	return nil, lastErr
}
