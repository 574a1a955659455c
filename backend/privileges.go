package backend

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner executes a command attached to the user's terminal.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type TerminalRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewTerminalRunner() *TerminalRunner {
	return &TerminalRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *TerminalRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	zap.S().Infow("running command", "cmd", name+" "+strings.Join(args, " "))
	return cmd.Run()
}

var escalationFallbacks = []string{"sudo", "doas", "pkexec"}

// Escalator prefixes commands with a privilege escalation tool.
type Escalator struct {
	// Tool is tried first; the usual tools are the fallback.
	Tool     string
	lookPath func(string) (string, error)
	euid     func() int
}

func NewEscalator(tool string) Escalator {
	return Escalator{Tool: tool, lookPath: exec.LookPath, euid: os.Geteuid}
}

// Wrap returns the argv to run command with elevated privileges. Root runs
// the command directly.
func (e Escalator) Wrap(command string, args ...string) []string {
	argv := append([]string{command}, args...)
	if e.euid != nil && e.euid() == 0 {
		return argv
	}

	lookPath := e.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	candidates := escalationFallbacks
	if e.Tool != "" {
		candidates = append([]string{e.Tool}, escalationFallbacks...)
	}
	for _, tool := range candidates {
		if _, err := lookPath(tool); err == nil {
			return append([]string{tool}, argv...)
		}
	}

	zap.S().Warnw("no privilege escalation tool found", "tried", candidates)
	tool := e.Tool
	if tool == "" {
		tool = "sudo"
	}
	return append([]string{tool}, argv...)
}
