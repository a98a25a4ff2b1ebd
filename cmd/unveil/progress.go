package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"unveil/internal/dump"
	"unveil/internal/recognize"
)

// consoleProgress renders the recognition event stream for interactive use.
// Per-item progress lines are suppressed when stdout is not a terminal so
// piped output stays limited to failures and the final summary.
type consoleProgress struct {
	out         io.Writer
	interactive bool
}

func newConsoleProgress(out *os.File) *consoleProgress {
	return &consoleProgress{
		out:         out,
		interactive: isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
	}
}

func (p *consoleProgress) Progress(done, total int, filename string) {
	if !p.interactive {
		return
	}
	fmt.Fprintf(p.out, "[%d/%d] %s\n", done, total, filename)
}

func (p *consoleProgress) Result(dump.Result) {}

func (p *consoleProgress) Failure(failure dump.Failure) {
	fmt.Fprintf(p.out, "failed: %s: %s\n", failure.Filename, failure.Reason)
}

func (p *consoleProgress) Summary(summary recognize.Summary) {
	fmt.Fprintf(p.out, "Recognized %d of %d screenshots (%d cached, %d failed) in %s\n",
		summary.Succeeded, summary.Total, summary.Cached, summary.Failed,
		summary.Elapsed.Round(time.Millisecond))
	if summary.Cancelled {
		fmt.Fprintln(p.out, "Run was cancelled; partial results were kept.")
	}
}
