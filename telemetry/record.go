// Package telemetry records and logs one collection cycle's summary,
// the ambient observability counterpart to package request's timing.
package telemetry

import (
	"log"
	"time"
)

// Record is one collection cycle's summary: what kind of collection ran,
// how long each phase took, and how many objects it touched. Textually
// modeled on gc::request::Request::perform's summary line in the original
// implementation, translated to the teacher's log.Printf style.
type Record struct {
	ProcessID      string
	CollectionKind string

	Total     time.Duration
	Prepare   time.Duration
	Trace     time.Duration
	Reclaim   time.Duration
	Finalize  time.Duration
	Suspended time.Duration

	Marked    int
	Promoted  int
	Evacuated int
}

// Logger emits Records via the stdlib log package, matching the teacher's
// own logging (feeder/main.go, feeder/ipc) rather than reaching for a
// structured-logging library the rest of the pack never uses.
type Logger struct {
	prefix string
}

// NewLogger returns a Logger whose lines are prefixed with prefix (e.g.
// "gc: " or "gcdemo: "), matching the teacher's per-component log prefix
// convention.
func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

// Log writes r as a single summary line.
func (l *Logger) Log(r Record) {
	log.Printf(
		"%sprocess %s: finished %s collection in %.2fms (%.2fms preparing, "+
			"%.2fms tracing, %.2fms reclaiming, %.2fms finalizing, "+
			"%.2fms suspended), %d marked, %d promoted, %d evacuated",
		l.prefix, r.ProcessID, r.CollectionKind,
		ms(r.Total), ms(r.Prepare), ms(r.Trace), ms(r.Reclaim), ms(r.Finalize), ms(r.Suspended),
		r.Marked, r.Promoted, r.Evacuated,
	)
}

func ms(d time.Duration) float64 { return d.Seconds() * 1000 }
