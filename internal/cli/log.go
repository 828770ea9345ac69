// Package cli implements the moviegraph command-line interface.
//
// Commands render interaction maps (render), serve the renderer over HTTP
// (serve), explore a MovieLens dataset (venn, import) and reorder
// similarity matrices (reorder). The CLI is built using cobra and logs
// through charmbracelet/log.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Commands
// log through the CLI's logger; long steps report their duration with
// progress.done.
//
// # Example
//
//	import "github.com/matzehuels/moviegraph/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger: timestamps as "HH:MM:SS.ms", messages
// below level dropped.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress measures an operation and logs its completion with the elapsed
// time as a structured field. It is meant for one goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts a progress tracker now.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time rounded to the
// millisecond, e.g. "read dataset movies=1682 ratings=100000 elapsed=312ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}
