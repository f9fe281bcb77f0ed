package supervise

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scamshield/devctl/internal/config"
)

// collectLines runs a multiplexer over the given readers and returns
// everything it delivered.
func collectLines(t *testing.T, stdout, stderr io.Reader) []OutputLine {
	t.Helper()

	var mu sync.Mutex
	var lines []OutputLine
	sink := func(line OutputLine) {
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
	}

	mux := newStreamMultiplexer(config.RoleBackend, stdout, stderr, sink)

	done := make(chan struct{})
	go func() {
		mux.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("multiplexer did not finish after both streams closed")
	}
	return lines
}

func TestMultiplexer_DeliversBothStreams(t *testing.T) {
	lines := collectLines(t,
		strings.NewReader("out line\n"),
		strings.NewReader("err line\n"),
	)

	if len(lines) != 2 {
		t.Fatalf("delivered %d lines, want 2", len(lines))
	}

	byStream := map[StreamKind]string{}
	for _, l := range lines {
		if l.Role != config.RoleBackend {
			t.Fatalf("role = %q, want backend", l.Role)
		}
		byStream[l.Stream] = l.Text
	}
	if byStream[StreamStdout] != "out line" {
		t.Fatalf("stdout = %q, want %q", byStream[StreamStdout], "out line")
	}
	if byStream[StreamStderr] != "err line" {
		t.Fatalf("stderr = %q, want %q", byStream[StreamStderr], "err line")
	}
}

func TestMultiplexer_PreservesPerStreamOrder(t *testing.T) {
	lines := collectLines(t,
		strings.NewReader("one\ntwo\nthree\n"),
		strings.NewReader(""),
	)

	var stdout []string
	for _, l := range lines {
		if l.Stream == StreamStdout {
			stdout = append(stdout, l.Text)
		}
	}
	want := []string{"one", "two", "three"}
	if len(stdout) != len(want) {
		t.Fatalf("stdout lines = %v, want %v", stdout, want)
	}
	for i := range want {
		if stdout[i] != want[i] {
			t.Fatalf("stdout[%d] = %q, want %q", i, stdout[i], want[i])
		}
	}
}

func TestMultiplexer_SilentStreamDoesNotBlock(t *testing.T) {
	// stderr never produces a line; the multiplexer must still deliver
	// stdout and exit once both readers hit end-of-stream.
	lines := collectLines(t,
		strings.NewReader("alive\n"),
		strings.NewReader(""),
	)

	if len(lines) != 1 || lines[0].Text != "alive" {
		t.Fatalf("lines = %v, want single stdout line", lines)
	}
}

func TestMultiplexer_ReplacesInvalidUTF8(t *testing.T) {
	// 0xff 0xfe is not valid UTF-8 anywhere in a stream.
	lines := collectLines(t,
		strings.NewReader("ok \xff\xfe end\n"),
		strings.NewReader(""),
	)

	if len(lines) != 1 {
		t.Fatalf("delivered %d lines, want 1", len(lines))
	}
	got := lines[0].Text
	if !strings.Contains(got, "�") {
		t.Fatalf("line %q does not contain a replacement character", got)
	}
	if !strings.HasPrefix(got, "ok ") || !strings.HasSuffix(got, " end") {
		t.Fatalf("line %q lost valid content around the bad bytes", got)
	}
}

func TestMultiplexer_NoFinalNewline(t *testing.T) {
	lines := collectLines(t,
		strings.NewReader("unterminated"),
		strings.NewReader(""),
	)

	if len(lines) != 1 || lines[0].Text != "unterminated" {
		t.Fatalf("lines = %v, want the unterminated line delivered", lines)
	}
}
