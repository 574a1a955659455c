package backend

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Source produces rows matching a search term.
type Source interface {
	Name() string
	Search(ctx context.Context, term Term) ([]Row, error)
}

// Searcher queries all sources concurrently and merges their rows.
type Searcher struct {
	sources []Source
}

func NewSearcher(sources ...Source) *Searcher {
	return &Searcher{sources: sources}
}

// DefaultSources are the foreign and sync sources, in merge order.
func DefaultSources(pm Pacman) []Source {
	return []Source{
		&ForeignSource{Pacman: pm},
		&SyncSource{Pacman: pm},
	}
}

// Search returns the rows of every source, foreign first, stably sorted by
// name. The first failing source (in source order) fails the search.
func (s *Searcher) Search(ctx context.Context, term Term) ([]Row, error) {
	pool, err := ants.NewPool(max(2, len(s.sources)))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([][]Row, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			rows, err := src.Search(ctx, term)
			if err != nil {
				zap.S().Warnw("source failed", "source", src.Name(), "err", err)
				errs[i] = err
				return
			}
			zap.S().Debugw("source done", "source", src.Name(), "rows", len(rows))
			results[i] = rows
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("failed to schedule %s search: %w", src.Name(), err)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := make([]Row, 0)
	for _, rows := range results {
		merged = append(merged, rows...)
	}
	SortRows(merged)
	zap.S().Infow("search finished", "pattern", term.Pattern, "rows", len(merged))
	return merged, nil
}

// Available reports whether pacman and its database look usable.
func (p *PacmanCmd) Available() bool {
	if _, err := os.Stat("/var/lib/pacman/"); err != nil {
		return false
	}
	if _, err := exec.LookPath(p.Path); err != nil {
		return false
	}
	return true
}
