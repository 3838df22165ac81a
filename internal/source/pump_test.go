package source

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLinePump(t *testing.T) {
	pump := newLinePump(strings.NewReader("one\ntwo\n\n  \nthree\n"), discardLogger())
	pump.wait() // reader hits EOF, everything is buffered

	var got []string
	for {
		line, ok := pump.next()
		if !ok {
			break
		}
		got = append(got, line)
	}

	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestLinePumpEmptyInput(t *testing.T) {
	pump := newLinePump(strings.NewReader(""), discardLogger())
	pump.wait()

	if line, ok := pump.next(); ok {
		t.Errorf("expected no lines, got %q", line)
	}
}
