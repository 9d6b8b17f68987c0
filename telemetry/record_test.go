package telemetry

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func captureLog(fn func()) string {
	var buf bytes.Buffer
	orig := log.Writer()
	origFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(orig)
		log.SetFlags(origFlags)
	}()

	fn()
	return buf.String()
}

func TestLogIncludesPrefixAndProcessID(t *testing.T) {
	out := captureLog(func() {
		NewLogger("gc: ").Log(Record{
			ProcessID:      "process-1",
			CollectionKind: "heap (young)",
			Marked:         3,
			Promoted:       1,
			Evacuated:      2,
		})
	})

	if !strings.Contains(out, "gc: process process-1") {
		t.Fatalf("expected the log line to carry the prefix and process id, got %q", out)
	}
	if !strings.Contains(out, "heap (young)") {
		t.Fatalf("expected the log line to name the collection kind, got %q", out)
	}
	if !strings.Contains(out, "preparing") {
		t.Fatalf("expected the log line to report the prepare phase, got %q", out)
	}
	if !strings.Contains(out, "3 marked, 1 promoted, 2 evacuated") {
		t.Fatalf("expected the log line to report the counts, got %q", out)
	}
}

func TestMsConvertsDurationToMilliseconds(t *testing.T) {
	if got := ms(1500 * time.Microsecond); got != 1.5 {
		t.Fatalf("expected 1.5ms, got %v", got)
	}
}
