//go:build !alpm

package backend

import (
	"context"
	"fmt"
	"strings"
)

// InstalledNames returns the names of all installed packages (pacman -Q).
func InstalledNames(ctx context.Context, pm Pacman) (map[string]bool, error) {
	lines, err := pm.Query(ctx, "-Q")
	if err != nil {
		return nil, fmt.Errorf("failed to list installed packages: %w", err)
	}
	installed := make(map[string]bool, len(lines))
	for _, line := range lines {
		if name, _, _ := strings.Cut(line, " "); name != "" {
			installed[name] = true
		}
	}
	return installed, nil
}
