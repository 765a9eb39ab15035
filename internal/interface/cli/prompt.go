package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter reads answers line by line from the terminal.
// Reading happens on a background goroutine so a waiting prompt still returns
// when the context is cancelled (Ctrl+C).
type Prompter struct {
	in        *bufio.Reader
	out       io.Writer
	lines     chan string
	done      chan struct{}
	once      sync.Once
	closeOnce sync.Once
}

// NewPrompter creates a prompter on in, writing labels to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	return &Prompter{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan string, 1),
		done:  make(chan struct{}),
	}
}

func (p *Prompter) readLoop() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		if line != "" {
			select {
			case p.lines <- strings.TrimRight(line, "\r\n"):
			case <-p.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Close stops delivering lines; later prompts report io.EOF.
// A reader blocked on input returns once that read completes.
func (p *Prompter) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// Line prints label and returns the next input line without its line ending.
// io.EOF is returned once input is exhausted.
func (p *Prompter) Line(ctx context.Context, label string) (string, error) {
	select {
	case <-p.done:
		return "", io.EOF
	default:
	}

	fmt.Fprint(p.out, label)
	p.once.Do(func() { go p.readLoop() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.done:
		return "", io.EOF
	case line, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// Confirm asks a yes/no question; the default is no.
// "y", "yes", "s" and "sim" are accepted, in any case.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Line(ctx, question+" (y/N): ")
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// IsYes reports whether answer is an affirmative reply.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "sim":
		return true
	}
	return false
}
