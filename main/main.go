package main

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"pms/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			ui.ReleaseTerminal()
			stackTrace := string(debug.Stack())

			zap.S().Errorw("application crashed", "error", r, "stack", stackTrace)
			_ = zap.L().Sync()

			reportPath, report := ui.WriteCrashReport(r, stackTrace, logFile)
			if reportPath == "" {
				fmt.Fprint(os.Stderr, report)
				code = 1
				return
			}

			p := tea.NewProgram(ui.NewPanicScreen(reportPath), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "pms crashed, report saved to %s\n", reportPath)
			}
			code = 1
		}
	}()

	cmd := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	cmd.SetArgs(joinAnsiWidth(args))
	return exitCode(cmd.Execute(), cmd)
}
