// Package clipboard implements best-effort copying of text to the user's
// clipboard. The primary path shells out to the first available OS clipboard
// command; the fallback emits an OSC 52 escape sequence, which most modern
// terminals translate into a clipboard write. A copy failure never affects
// the text being copied — callers keep it and report the error.
package clipboard

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Copier copies text to the user's clipboard.
type Copier interface {
	Copy(ctx context.Context, text string) error
}

// Error reports that both the primary and the fallback copy paths failed.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("clipboard copy failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// command is one candidate clipboard writer, tried in order.
type command struct {
	name string
	args []string
}

var commands = []command{
	{name: "wl-copy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--input"}},
	{name: "pbcopy"},
}

// System copies through OS clipboard commands with the OSC 52 fallback.
type System struct {
	lookPath func(name string) (string, error)
	run      func(ctx context.Context, name string, args []string, stdin string) error
	term     io.Writer
}

// NewSystem creates a System writing the OSC 52 fallback to stdout.
func NewSystem() *System {
	return &System{
		lookPath: exec.LookPath,
		run:      runCommand,
		term:     os.Stdout,
	}
}

// Copy writes text to the clipboard. Every installed clipboard command is
// tried first; if none exists or all fail, the OSC 52 sequence is written to
// the terminal. Only when that also fails does Copy return *Error.
func (s *System) Copy(ctx context.Context, text string) error {
	var firstErr error
	for _, c := range commands {
		if _, err := s.lookPath(c.name); err != nil {
			continue
		}
		if err := s.run(ctx, c.name, c.args, text); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", c.name, err)
			}
			continue
		}
		return nil
	}

	if err := s.writeOSC52(text); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return &Error{Err: firstErr}
	}
	return nil
}

// writeOSC52 emits the clipboard escape sequence: ESC ] 52 ; c ; <base64> BEL.
func (s *System) writeOSC52(text string) error {
	_, err := fmt.Fprintf(s.term, "\x1b]52;c;%s\a",
		base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}

func runCommand(ctx context.Context, name string, args []string, stdin string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Run()
}
