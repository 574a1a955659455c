package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Plan lists row indices to remove (installed) and to install, ascending.
type Plan struct {
	Remove  []int
	Install []int
}

func (p Plan) Empty() bool {
	return len(p.Remove) == 0 && len(p.Install) == 0
}

// PartitionSelection splits the selection by installed state. An empty
// selection stands for the cursor row.
func PartitionSelection(rows []Row, selected map[int]bool, cursor int) Plan {
	picked := make([]int, 0, len(selected))
	for i, on := range selected {
		if on && i >= 0 && i < len(rows) {
			picked = append(picked, i)
		}
	}
	if len(picked) == 0 && cursor >= 0 && cursor < len(rows) {
		picked = append(picked, cursor)
	}
	sort.Ints(picked)

	var plan Plan
	for _, i := range picked {
		if rows[i].Installed {
			plan.Remove = append(plan.Remove, i)
		} else {
			plan.Install = append(plan.Install, i)
		}
	}
	return plan
}

// Executor runs a plan through pacman: removals first, then installs.
type Executor struct {
	Runner      Runner
	Escalator   Escalator
	Pacman      string
	RemoveArgs  []string
	InstallArgs []string
}

func (e Executor) Apply(ctx context.Context, rows []Row, plan Plan) error {
	var errs []error
	if len(plan.Remove) > 0 {
		if err := e.run(ctx, e.RemoveArgs, rows, plan.Remove); err != nil {
			errs = append(errs, fmt.Errorf("remove failed: %w", err))
		}
	}
	if len(plan.Install) > 0 {
		if err := e.run(ctx, e.InstallArgs, rows, plan.Install); err != nil {
			errs = append(errs, fmt.Errorf("install failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (e Executor) run(ctx context.Context, flags []string, rows []Row, idx []int) error {
	args := append([]string{}, flags...)
	for _, i := range idx {
		args = append(args, rows[i].Name)
	}
	pacman := e.Pacman
	if pacman == "" {
		pacman = "pacman"
	}
	argv := e.Escalator.Wrap(pacman, args...)
	return e.Runner.Run(ctx, argv[0], argv[1:]...)
}
