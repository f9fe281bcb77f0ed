package supervise

import (
	"bufio"
	"io"
	"strings"

	"github.com/scamshield/devctl/internal/config"
)

// StreamKind distinguishes the two output streams of a process.
type StreamKind string

const (
	// StreamStdout is the process's standard output.
	StreamStdout StreamKind = "stdout"

	// StreamStderr is the process's standard error.
	StreamStderr StreamKind = "stderr"
)

// OutputLine is one line of output attributed to a role and stream.
type OutputLine struct {
	// Role is the process the line came from.
	Role config.Role

	// Stream is which of the process's streams produced the line.
	Stream StreamKind

	// Text is the line content, with any invalid UTF-8 sequences
	// replaced by the Unicode replacement character.
	Text string
}

// OutputSink receives interleaved output lines from a multiplexer.
type OutputSink func(OutputLine)

const (
	// outputQueueSize bounds each stream's line queue.
	outputQueueSize = 256

	// maxLineBytes bounds a single output line (npm tooling can emit
	// very long lines, e.g. bundler progress or stack traces).
	maxLineBytes = 1024 * 1024
)

// Multiplexer interleaves one process's stdout and stderr lines into a
// single sink without letting a silent stream block the other.
//
// Two reader goroutines each scan complete lines into their own bounded
// channel and close it at end-of-stream; Run drains both channels and
// returns only after both are closed.
type Multiplexer struct {
	role   config.Role
	stdout io.Reader
	stderr io.Reader
	sink   OutputSink
}

// NewMultiplexer creates a multiplexer for a launched process.
//
// Parameters:
//   - p: The process whose output should be multiplexed.
//   - sink: Receives each line; called from the drain goroutine only.
func NewMultiplexer(p *ManagedProcess, sink OutputSink) *Multiplexer {
	return &Multiplexer{
		role:   p.Role,
		stdout: p.stdout,
		stderr: p.stderr,
		sink:   sink,
	}
}

// newStreamMultiplexer builds a multiplexer from raw readers.
func newStreamMultiplexer(role config.Role, stdout, stderr io.Reader, sink OutputSink) *Multiplexer {
	return &Multiplexer{role: role, stdout: stdout, stderr: stderr, sink: sink}
}

// Run multiplexes both streams until each reaches end-of-stream. It
// blocks the calling goroutine; the Supervisor runs one Run per process
// in its own goroutine.
func (m *Multiplexer) Run() {
	stdoutCh := make(chan OutputLine, outputQueueSize)
	stderrCh := make(chan OutputLine, outputQueueSize)

	go m.readLines(StreamStdout, m.stdout, stdoutCh)
	go m.readLines(StreamStderr, m.stderr, stderrCh)

	// Drain both channels; a closed channel is set to nil so the select
	// stops considering it. Exits once both sides are closed.
	for stdoutCh != nil || stderrCh != nil {
		select {
		case line, ok := <-stdoutCh:
			if !ok {
				stdoutCh = nil
				continue
			}
			m.sink(line)
		case line, ok := <-stderrCh:
			if !ok {
				stderrCh = nil
				continue
			}
			m.sink(line)
		}
	}
}

// readLines scans complete lines from one stream into its queue, closing
// the queue at end-of-stream.
func (m *Multiplexer) readLines(kind StreamKind, r io.Reader, ch chan<- OutputLine) {
	defer close(ch)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		ch <- OutputLine{
			Role:   m.role,
			Stream: kind,
			Text:   strings.ToValidUTF8(scanner.Text(), "�"),
		}
	}
	// A scanner error here is almost always the pipe closing during
	// shutdown; the stream is done either way.
}
