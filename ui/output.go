package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"pms/backend"
)

var csvFields = []string{"db", "pkg", "ver", "grps", "ins", "new", "desc"}

// WriteJSON writes the rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []backend.Row) error {
	if rows == nil {
		rows = []backend.Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// WriteCSV writes a header line and one tab separated line per row.
// Absent values are empty fields.
func WriteCSV(w io.Writer, rows []backend.Row) error {
	var b strings.Builder
	b.WriteString(strings.Join(csvFields, "\t"))
	b.WriteByte('\n')
	for _, r := range rows {
		ins := ""
		if r.Installed {
			ins = "installed"
		}
		b.WriteString(strings.Join([]string{
			r.DB,
			r.Name,
			r.Version,
			r.Groups.OrElse(""),
			ins,
			r.NewVersion.OrElse(""),
			r.Description,
		}, "\t"))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteANSI writes the zebra striped table formatted for width columns.
func WriteANSI(w io.Writer, f Formatter, rs *RowSet, width int) error {
	t, err := f.Format(rs, width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.Join(t.Striped(f.Palette), "\n")+"\n")
	return err
}
