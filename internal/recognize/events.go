package recognize

import (
	"time"

	"unveil/internal/dump"
)

// Observer receives the processing event stream. Events are emitted from
// worker goroutines but are serialized, so implementations never see two
// callbacks interleaved.
type Observer interface {
	// Progress fires after each screenshot reaches a terminal outcome.
	Progress(done, total int, filename string)
	// Result fires once per successfully recognized screenshot.
	Result(result dump.Result)
	// Failure fires once per screenshot that exhausted its retries or hit
	// a permanent error.
	Failure(failure dump.Failure)
	// Summary fires exactly once, after the last worker drains.
	Summary(summary Summary)
}

// Summary describes a completed (or cancelled) processing run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Cached    int
	Cancelled bool
	Elapsed   time.Duration
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) Progress(int, int, string) {}
func (NopObserver) Result(dump.Result)        {}
func (NopObserver) Failure(dump.Failure)      {}
func (NopObserver) Summary(Summary)           {}
