// Package prompt supplies free-text answers to interactive questions.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// InputProvider answers a labelled question with free text.
type InputProvider interface {
	Ask(label string) (string, error)
}

// Console reads answers line by line, writing each label first.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a console prompt over r and w.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(r),
		out: w,
	}
}

// Ask writes label and blocks until a line is read.
func (c *Console) Ask(label string) (string, error) {
	if _, err := fmt.Fprint(c.out, label); err != nil {
		return "", err
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read answer to %q: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimSpace(line), nil
}

// Static returns canned answers in order.
type Static struct {
	Answers []string
	Asked   []string
}

// Ask returns the next canned answer.
func (s *Static) Ask(label string) (string, error) {
	s.Asked = append(s.Asked, label)
	if len(s.Answers) == 0 {
		return "", fmt.Errorf("no answer left for %q", strings.TrimSpace(label))
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

// AskFloat asks a question and parses the answer as a float.
func AskFloat(p InputProvider, label string) (float64, error) {
	answer, err := p.Ask(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", answer, err)
	}
	return v, nil
}
