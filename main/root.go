package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"pms/backend"
	"pms/config"
	"pms/logutil"
	"pms/ui"
)

const (
	exitToolError = 200
	exitUsage     = 1

	fallbackWidth  = 80
	fallbackHeight = 25
)

// logFile is where the crash report looks for the log tail.
var logFile = logutil.DefaultFile()

// exitError carries the process exit code of a failed run. Without a
// message or an error the output was already written.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.msg
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitCode(err error, cmd *cobra.Command) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		switch {
		case ee.msg != "":
			fmt.Fprintln(cmd.ErrOrStderr(), ee.msg)
		case ee.err != nil:
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	return exitUsage
}

// joinAnsiWidth rewrites "-a N" and "--ansi N" to "--ansi=N" when N is a
// width, so the optional value can be given in either form.
func joinAnsiWidth(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if (arg == "-a" || arg == "--ansi") && i+1 < len(args) {
			if _, err := strconv.ParseUint(args[i+1], 10, 31); err == nil {
				out = append(out, "--ansi="+args[i+1])
				i++
				continue
			}
		}
		out = append(out, arg)
	}
	return out
}

type options struct {
	json       bool
	csv        bool
	ansi       int
	configPath string
	aur        bool
	refreshAUR bool
	noColor    bool
}

type app struct {
	opts   options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "pms [flags] <pattern>",
		Short: "Search pacman packages and pick what to install or remove",
		Long: "pms searches installed foreign packages and the sync databases for a\n" +
			"case-insensitive regular expression and lets you browse, select,\n" +
			"install and remove the results.",
		Version:       fmt.Sprintf("%s (commit %s, built %s, %s)", ui.Version, ui.GitCommit, ui.BuildTime, runtime.Version()),
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return a.run(cmd.Context(), cmd, args[0])
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.BoolVarP(&a.opts.json, "json", "j", false, "print the results as JSON")
	flags.BoolVarP(&a.opts.csv, "csv", "c", false, "print the results as tab separated values")
	flags.IntVarP(&a.opts.ansi, "ansi", "a", 0, "print the colored table at `WIDTH` columns (0 or none detects the terminal)")
	flags.Lookup("ansi").NoOptDefVal = "0"
	flags.StringVar(&a.opts.configPath, "config", config.DefaultPath(), "configuration file")
	flags.BoolVar(&a.opts.aur, "aur", false, "check the AUR for newer versions of foreign packages")
	flags.BoolVar(&a.opts.refreshAUR, "refresh-aur", false, "drop cached AUR versions before searching")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colors")
	cmd.MarkFlagsMutuallyExclusive("json", "csv", "ansi")

	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, pattern string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	if a.opts.aur {
		cfg.AUR = true
	}
	if a.opts.noColor {
		cfg.NoColor = true
	}

	if cfg.Log.File != "" {
		logFile = cfg.Log.File
	}
	closeLog, err := logutil.Setup(cfg.Log)
	if err != nil {
		fmt.Fprintln(a.stderr, "warning:", err)
	}
	defer closeLog()

	t, err := backend.NewTerm(pattern)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	pm := backend.NewPacmanCmd()
	if !pm.Available() {
		zap.S().Warnw("pacman not found in PATH")
	}

	rows, err := a.search(ctx, cfg, pm, t)
	if err != nil {
		var toolErr *backend.ToolError
		if errors.As(err, &toolErr) && toolErr.Stderr != "" {
			fmt.Fprint(a.stderr, toolErr.Stderr)
			return &exitError{code: exitToolError}
		}
		return &exitError{code: exitToolError, err: err}
	}

	switch {
	case a.opts.json:
		return ui.WriteJSON(a.stdout, rows)
	case a.opts.csv:
		return ui.WriteCSV(a.stdout, rows)
	case cmd.Flags().Changed("ansi"):
		return a.printANSI(cfg, t, rows)
	}

	width, height, tty := a.terminal()
	if len(rows) == 0 || !tty {
		return ui.WriteCSV(a.stdout, rows)
	}
	return a.browse(ctx, cfg, pm, t, rows, width, height)
}

func (a *app) search(ctx context.Context, cfg config.Config, pm backend.Pacman, t backend.Term) ([]backend.Row, error) {
	sources := backend.DefaultSources(pm)
	if cfg.AUR {
		cache := backend.NewVersionCache(backend.DefaultCacheDir(), cfg.AURTTL())
		if a.opts.refreshAUR {
			cache.Clear()
		}
		sources[0] = &backend.AURSource{Source: sources[0], Lookup: backend.NewAURClient(cache)}
	}
	return backend.NewSearcher(sources...).Search(ctx, t)
}

func (a *app) formatter(cfg config.Config, profile termenv.Profile, t backend.Term) ui.Formatter {
	return ui.Formatter{
		Palette: ui.NewPalette(cfg.Colors, profile),
		Term:    t,
		MinDesc: cfg.MinDescWidth,
	}
}

func (a *app) printANSI(cfg config.Config, t backend.Term, rows []backend.Row) error {
	profile := ui.ColorProfile(cfg.ColorProfile, cfg.NoColor)
	// Asking for ANSI output means colors even when piped.
	if profile == termenv.Ascii && cfg.ColorProfile == "" && !cfg.NoColor {
		profile = termenv.ANSI256
	}

	width := a.opts.ansi
	if width <= 0 {
		width, _, _ = a.terminal()
	}

	err := ui.WriteANSI(a.stdout, a.formatter(cfg, profile, t), ui.NewRowSet(rows), width)
	var layoutErr *ui.LayoutError
	if errors.As(err, &layoutErr) {
		return &exitError{code: exitUsage, msg: ui.ErrorText(layoutErr.Error())}
	}
	return err
}

func (a *app) browse(ctx context.Context, cfg config.Config, pm backend.Pacman, t backend.Term, rows []backend.Row, width, height int) error {
	profile := ui.ColorProfile(cfg.ColorProfile, cfg.NoColor)
	f := a.formatter(cfg, profile, t)
	rs := ui.NewRowSet(rows)

	load := func(ctx context.Context, name string) (backend.PackageInfo, map[string]bool, error) {
		info, err := backend.Info(ctx, pm, name)
		if err != nil {
			return backend.PackageInfo{}, nil, err
		}
		installed, err := backend.InstalledNames(ctx, pm)
		if err != nil {
			zap.S().Warnw("could not list installed packages", "err", err)
		}
		return info, installed, nil
	}

	opts := ui.Options{
		Padding:      cfg.ScrollPadding,
		WheelStep:    cfg.WheelStep,
		PollInterval: cfg.PollInterval(),
	}
	res, err := ui.RunBrowser(ui.NewBrowser(rs, f, opts, load, width, height))
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	switch res.Outcome {
	case ui.Confirmed:
		return a.apply(ctx, cfg, f, rows, res, width)
	case ui.Cancelled:
		if res.Scrollbar {
			return nil
		}
		width, _, _ = a.terminal()
		err := ui.WriteANSI(a.stdout, f, rs, width)
		var layoutErr *ui.LayoutError
		if errors.As(err, &layoutErr) {
			fmt.Fprintln(a.stderr, ui.ErrorText(layoutErr.Error()))
			return nil
		}
		return err
	}
	return nil
}

func (a *app) apply(ctx context.Context, cfg config.Config, f ui.Formatter, rows []backend.Row, res ui.Result, width int) error {
	plan := backend.PartitionSelection(rows, res.Selected, res.Cursor)
	if plan.Empty() {
		return nil
	}
	if err := ui.PrintPlan(a.stdout, plan, res.Table, f.Palette, width); err != nil {
		return err
	}

	executor := backend.Executor{
		Runner:      &backend.TerminalRunner{Stdin: a.stdin, Stdout: a.stdout, Stderr: a.stderr},
		Escalator:   backend.NewEscalator(cfg.Escalation),
		RemoveArgs:  cfg.RemoveArgs,
		InstallArgs: cfg.InstallArgs,
	}
	if err := executor.Apply(ctx, rows, plan); err != nil {
		zap.S().Errorw("package action failed", "err", err)
		fmt.Fprintln(a.stderr, ui.ErrorText(err.Error()))
	}
	return nil
}

// terminal reports the size of stdout and whether both stdin and stdout
// are terminals. The size falls back to 80x25.
func (a *app) terminal() (int, int, bool) {
	width, height := fallbackWidth, fallbackHeight
	out, ok := a.stdout.(*os.File)
	if !ok {
		return width, height, false
	}
	if w, h, err := term.GetSize(int(out.Fd())); err == nil && w > 0 && h > 0 {
		width, height = w, h
	}
	in, ok := a.stdin.(*os.File)
	tty := ok && term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
	return width, height, tty
}
