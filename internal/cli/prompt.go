package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errNoInput is returned when a prompt reaches end of input.
var errNoInput = errors.New("no input")

// prompter reads answers from the user. Passwords are read without echo
// when in is a terminal.
type prompter struct {
	out     io.Writer
	in      *bufio.Reader
	fd      int
	isTerm  bool
	readPwd func(fd int) ([]byte, error)
}

// newPrompter reads from in. When in is a terminal, password input is hidden.
func newPrompter(out io.Writer, in io.Reader) *prompter {
	p := &prompter{out: out, in: bufio.NewReader(in), readPwd: term.ReadPassword}
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		p.fd = int(f.Fd())
		p.isTerm = true
	}
	return p
}

// line asks for a value. An empty answer returns def.
func (p *prompter) line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	text, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || text == "") {
		if errors.Is(err, io.EOF) {
			return "", errNoInput
		}
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return def, nil
	}
	return text, nil
}

// password asks for a secret. The answer is not trimmed.
func (p *prompter) password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.isTerm {
		b, err := p.readPwd(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	text, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || text == "") {
		if errors.Is(err, io.EOF) {
			return "", errNoInput
		}
		return "", err
	}
	return strings.TrimRight(text, "\r\n"), nil
}

// confirm asks a yes/no question. Anything but y or yes declines, as does
// end of input.
func (p *prompter) confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	text, err := p.in.ReadString('\n')
	if err != nil && text == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "y", "yes", "s", "sim":
		return true
	default:
		return false
	}
}
