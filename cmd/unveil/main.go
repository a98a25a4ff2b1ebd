// Command unveil recognizes player names on poker table screenshots and
// rewrites anonymized hand history files with the recognized names.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// A cancelled run reports itself through the progress summary.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "unveil: %v\n", err)
		}
		os.Exit(1)
	}
}
