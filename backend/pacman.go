package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Pacman runs read-only pacman queries and returns stdout split into lines.
type Pacman interface {
	Query(ctx context.Context, args ...string) ([]string, error)
}

// ToolError reports diagnostic output of an external command. Any stderr
// output is fatal to the operation that issued the command.
type ToolError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", e.Command, strings.TrimRight(e.Stderr, "\n"))
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

type PacmanCmd struct {
	Path string
}

func NewPacmanCmd() *PacmanCmd {
	return &PacmanCmd{Path: "pacman"}
}

func (p *PacmanCmd) Query(ctx context.Context, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, p.Path, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	command := strings.Join(append([]string{p.Path}, args...), " ")
	zap.S().Debugw("running query", "cmd", command)

	err := cmd.Run()
	if stderr.Len() > 0 {
		return nil, &ToolError{Command: command, Stderr: stderr.String(), Err: err}
	}
	if err != nil {
		// pacman exits 1 without diagnostics when nothing matched
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			zap.S().Debugw("query found nothing", "cmd", command, "code", exitErr.ExitCode())
			return nil, nil
		}
		return nil, &ToolError{Command: command, Err: err}
	}
	return splitLines(stdout.String()), nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// parseParagraph reads one "Key : Value" block of pacman -Qi/-Si output.
// Continuation lines are ignored.
func parseParagraph(lines []string) map[string]string {
	fields := make(map[string]string, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, " ") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields
}

// paragraphs splits pacman output into blank-line separated blocks.
func paragraphs(lines []string) [][]string {
	var (
		out [][]string
		cur []string
	)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
