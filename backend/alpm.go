//go:build alpm

package backend

import (
	"context"
	"fmt"

	"github.com/Jguer/go-alpm/v2"
)

// InstalledNames reads the local package database through libalpm instead
// of spawning pacman.
func InstalledNames(_ context.Context, _ Pacman) (map[string]bool, error) {
	h, err := alpm.Initialize("/", "/var/lib/pacman/")
	if err != nil {
		return nil, fmt.Errorf("failed to open alpm handle: %w", err)
	}
	defer h.Release()

	db, err := h.LocalDB()
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}

	installed := make(map[string]bool)
	err = db.PkgCache().ForEach(func(p alpm.IPackage) error {
		installed[p.Name()] = true
		return nil
	})
	return installed, err
}
