package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalPrompter asks for a theme name on stdin. An empty line accepts the suggestion;
// end of input cancels the save.
type terminalPrompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	interactive := false
	if file, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(file.Fd()))
	}
	return &terminalPrompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

func (p *terminalPrompter) ConfirmName(ctx context.Context, suggested string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	fmt.Fprintf(p.out, "Enter a name for this theme: [%s] ", suggested)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("read theme name: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		if p.interactive {
			fmt.Fprintln(p.out)
		}
		return "", false, nil
	}

	name := strings.TrimSpace(line)
	if name == "" {
		name = suggested
	}
	return name, true, nil
}

// fixedPrompter answers without asking, for --name.
type fixedPrompter struct {
	name string
}

func (p fixedPrompter) ConfirmName(ctx context.Context, suggested string) (string, bool, error) {
	return p.name, true, nil
}
