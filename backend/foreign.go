package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ForeignSource lists locally built packages (pacman -Qmi).
type ForeignSource struct {
	Pacman Pacman
}

func (s *ForeignSource) Name() string {
	return "foreign"
}

func (s *ForeignSource) Search(ctx context.Context, term Term) ([]Row, error) {
	lines, err := s.Pacman.Query(ctx, "-Qmi")
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign packages: %w", err)
	}
	return parseForeign(lines, term), nil
}

func parseForeign(lines []string, term Term) []Row {
	rows := make([]Row, 0)
	for _, para := range paragraphs(lines) {
		info := parseParagraph(para)

		name, hasName := info["Name"]
		version, hasVersion := info["Version"]
		desc, hasDesc := info["Description"]
		if !hasName || !hasVersion || !hasDesc || name == "" {
			zap.S().Debugw("skipping incomplete foreign block", "name", name)
			continue
		}

		groups := info["Groups"]
		if groups == "None" {
			groups = ""
		}
		if !term.Match(groups + " " + name + " " + desc) {
			continue
		}

		row := Row{
			DB:          ForeignDB,
			Name:        name,
			Version:     version,
			Installed:   true,
			Description: desc,
		}
		if groups != "" {
			row.Groups = Some(groups)
		}
		rows = append(rows, row)
	}
	return rows
}
