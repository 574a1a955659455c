package backend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// SyncSource searches the sync repositories (pacman -Ss).
type SyncSource struct {
	Pacman Pacman
}

const descJoiner = " »» "

var syncRecord = regexp.MustCompile(
	`^([^ ]+?)/([^ ]+?) ([^ ]+?)(?: \((.+?)\))?(?: \[(installed)(?:\]|: ([^ ]+?)\]))?` + descJoiner + `(.*)$`)

func (s *SyncSource) Name() string {
	return "sync"
}

func (s *SyncSource) Search(ctx context.Context, term Term) ([]Row, error) {
	lines, err := s.Pacman.Query(ctx, "-Ss", term.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search sync databases: %w", err)
	}
	return parseSync(lines, term), nil
}

// joinRecords folds each indented description line onto its header line.
func joinRecords(lines []string) []string {
	records := make([]string, 0, len(lines)/2)
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "    "); ok && len(records) > 0 {
			records[len(records)-1] += descJoiner + rest
			continue
		}
		records = append(records, line)
	}
	return records
}

func parseSync(lines []string, term Term) []Row {
	rows := make([]Row, 0)
	for _, rec := range joinRecords(lines) {
		if !term.Match(rec) {
			continue
		}
		m := syncRecord.FindStringSubmatch(rec)
		if m == nil {
			zap.S().Debugw("skipping unparseable sync record", "record", rec)
			continue
		}
		row := Row{
			DB:          m[1],
			Name:        m[2],
			Version:     m[3],
			Installed:   m[5] != "",
			Description: m[7],
		}
		if m[4] != "" {
			row.Groups = Some(m[4])
		}
		// "[installed: X]" means X is installed and the repo has m[3]
		if m[6] != "" {
			row.Version = m[6]
			row.NewVersion = Some(m[3])
		}
		rows = append(rows, row)
	}
	return rows
}
