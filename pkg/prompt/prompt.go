// Package prompt reads operator input from a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer is given
var ErrNoInput = errors.New("no input")

// Prompter asks questions and returns trimmed answers
type Prompter interface {
	Ask(question string) (string, error)
	// AskSecret reads without echo where the input is a terminal
	AskSecret(question string) (string, error)
}

// Terminal prompts on a reader/writer pair, normally stdin and stderr
type Terminal struct {
	in  *bufio.Reader
	fd  int
	tty bool
	out io.Writer
}

// NewTerminal creates a prompter on the process stdin; questions go to stderr
// so stdout only carries results.
func NewTerminal() *Terminal {
	fd := int(os.Stdin.Fd())
	return &Terminal{
		in:  bufio.NewReader(os.Stdin),
		fd:  fd,
		tty: term.IsTerminal(fd),
		out: os.Stderr,
	}
}

// NewReader creates a prompter over arbitrary streams. Secrets are echoed.
func NewReader(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), fd: -1, out: out}
}

func (t *Terminal) Ask(question string) (string, error) {
	fmt.Fprint(t.out, question+" ")
	line, err := t.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", ErrNoInput
	case err != nil && !errors.Is(err, io.EOF):
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) AskSecret(question string) (string, error) {
	if !t.tty {
		return t.Ask(question)
	}

	fmt.Fprint(t.out, question+" ")
	secret, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// Script answers questions from a fixed list, for tests and --yes style
// automation.
type Script struct {
	Answers []string
	Asked   []string
}

// NewScript creates a scripted prompter
func NewScript(answers ...string) *Script {
	return &Script{Answers: answers}
}

func (s *Script) Ask(question string) (string, error) {
	s.Asked = append(s.Asked, question)
	if len(s.Answers) == 0 {
		return "", ErrNoInput
	}
	a := s.Answers[0]
	s.Answers = s.Answers[1:]
	return strings.TrimSpace(a), nil
}

func (s *Script) AskSecret(question string) (string, error) {
	return s.Ask(question)
}
