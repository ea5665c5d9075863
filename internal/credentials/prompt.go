package credentials

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var (
	readPassword = term.ReadPassword
	isTerminal   = func(fd uintptr) bool {
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

// Prompt asks for credentials on the controlling terminal. When stdin is not a
// terminal it reports ErrUnavailable instead of blocking.
type Prompt struct {
	In  *os.File
	Out io.Writer

	reader *bufio.Reader
}

// NewPrompt returns a prompt bound to stdin and stderr.
func NewPrompt() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stderr}
}

func (p *Prompt) interactive() bool {
	return p.In != nil && isTerminal(p.In.Fd())
}

func (p *Prompt) Username(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !p.interactive() {
		return "", ErrUnavailable
	}
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	fmt.Fprint(p.out(), "Username: ")
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read username: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompt) Password(ctx context.Context, username string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !p.interactive() {
		return "", ErrUnavailable
	}
	fmt.Fprintf(p.out(), "Password for %s: ", username)
	secret, err := readPassword(int(p.In.Fd()))
	fmt.Fprintln(p.out())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

func (p *Prompt) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}
