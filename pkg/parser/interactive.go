package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// InteractiveSourceName is the Source recorded on lines read from the terminal.
const InteractiveSourceName = "<stdin>"

// message is what the reader goroutine hands over: a line, the end of input,
// or a read error.
type message struct {
	text string
	end  bool
	err  error
}

// InteractiveOption configures an InteractiveSource.
type InteractiveOption func(*InteractiveSource)

// WithMirror copies every line read to w, one write per line, before the line
// is handed to the consumer. Lines are copied byte for byte, terminator
// included. The copy can later be read back with a FileSource.
func WithMirror(w io.Writer) InteractiveOption {
	return func(s *InteractiveSource) {
		s.mirror = w
	}
}

// WithPrompt writes prompt to w before each line is read.
func WithPrompt(w io.Writer, prompt string) InteractiveOption {
	return func(s *InteractiveSource) {
		s.promptOut = w
		s.prompt = prompt
	}
}

// InteractiveSource implements LineSource over live terminal input. A
// background goroutine performs the blocking reads and passes lines through
// a single-slot channel, so lines arrive in the order they were typed.
//
// The source ends only when the input reports end of file (Ctrl-D on a
// terminal). Close stops a reader waiting to hand over a line; a reader
// blocked inside Read cannot be interrupted and exits with the process.
type InteractiveSource struct {
	in        io.Reader
	mirror    io.Writer
	promptOut io.Writer
	prompt    string

	lines chan message
	stop  chan struct{}

	startOnce sync.Once
	closeOnce sync.Once

	lineNum int
	done    bool
}

// NewInteractiveSource creates a LineSource reading lines from in. Reading
// starts on the first call to Next.
func NewInteractiveSource(in io.Reader, opts ...InteractiveOption) *InteractiveSource {
	s := &InteractiveSource{
		in:    in,
		lines: make(chan message, 1),
		stop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next blocks until the next line is available.
// Returns io.EOF once the end of input has been reached.
func (s *InteractiveSource) Next(ctx context.Context) (*Line, error) {
	if s.done {
		return nil, io.EOF
	}
	s.startOnce.Do(func() { go s.read() })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.stop:
		return nil, ErrSourceClosed
	case msg := <-s.lines:
		switch {
		case msg.err != nil:
			s.done = true
			return nil, msg.err
		case msg.end:
			s.done = true
			return nil, io.EOF
		}
		s.lineNum++
		return &Line{Text: msg.text, Source: InteractiveSourceName, LineNum: s.lineNum}, nil
	}
}

// Close stops the reader goroutine at its next hand-over.
func (s *InteractiveSource) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

// read is the producer. It owns the send side of s.lines and sends exactly
// one terminal message: the end marker or an error.
func (s *InteractiveSource) read() {
	r := bufio.NewReader(s.in)
	for {
		if s.promptOut != nil && s.prompt != "" {
			fmt.Fprint(s.promptOut, s.prompt)
		}

		raw, err := r.ReadString('\n')
		if raw != "" {
			text := strings.TrimRight(raw, "\r\n")
			if s.mirror != nil {
				if _, werr := io.WriteString(s.mirror, raw); werr != nil {
					s.send(message{err: fmt.Errorf("writing interactive copy: %w", werr)})
					return
				}
			}
			if !s.send(message{text: text}) {
				return
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				s.send(message{end: true})
			} else {
				s.send(message{err: fmt.Errorf("reading %s: %w", InteractiveSourceName, err)})
			}
			return
		}
	}
}

func (s *InteractiveSource) send(msg message) bool {
	select {
	case s.lines <- msg:
		return true
	case <-s.stop:
		return false
	}
}
