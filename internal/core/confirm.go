package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirmer answers yes/no questions on behalf of the user. The batch and
// interactive modes share one orchestrator code path; only the injected
// Confirmer differs. The safe answer is always no.
type Confirmer interface {
	Confirm(prompt string) bool
}

// DenyAll answers no to every prompt. Used for non-interactive runs and
// for dry runs.
type DenyAll struct{}

func (DenyAll) Confirm(string) bool { return false }

type terminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConfirmer returns a terminal-backed Confirmer when stdin is a
// terminal and verbosity permits prompting; otherwise every question is
// answered no.
func NewConfirmer(verbosity int) Confirmer {
	if verbosity < 2 || !term.IsTerminal(int(os.Stdin.Fd())) {
		return DenyAll{}
	}

	return &terminalConfirmer{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

func (c *terminalConfirmer) Confirm(prompt string) bool {
	_, _ = fmt.Fprintf(c.out, "%s [y/N]: ", prompt)

	line, err := c.in.ReadString('\n')
	if err != nil {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes"
}
