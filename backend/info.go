package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNoPackage = errors.New("no such package")

// Field is one key of pacman -Sii output. Multi-line values are joined
// with "\n".
type Field struct {
	Key   string
	Value string
}

// PackageInfo keeps the fields in pacman's order.
type PackageInfo struct {
	Fields []Field
}

func (pi PackageInfo) Get(key string) (string, bool) {
	for _, f := range pi.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

func (pi PackageInfo) Lookup(key string) string {
	v, _ := pi.Get(key)
	return v
}

// Info fetches the extended sync info of a single package.
func Info(ctx context.Context, pm Pacman, name string) (PackageInfo, error) {
	lines, err := pm.Query(ctx, "-Sii", name)
	if err != nil {
		return PackageInfo{}, fmt.Errorf("failed to get info for %s: %w", name, err)
	}
	if len(lines) == 0 {
		return PackageInfo{}, fmt.Errorf("%w »%s«", ErrNoPackage, name)
	}
	return parseInfo(lines), nil
}

// parseInfo keeps the first paragraph only, since -Sii prints one block
// per repository carrying the name. "None" values are dropped.
func parseInfo(lines []string) PackageInfo {
	var (
		info  PackageInfo
		index = map[string]int{}
		last  string
	)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(info.Fields) > 0 {
				break
			}
			continue
		}
		value := line
		if !strings.HasPrefix(line, " ") {
			if k, v, ok := strings.Cut(line, ":"); ok {
				last = strings.TrimSpace(k)
				value = v
			}
		}
		value = strings.TrimSpace(value)
		if value == "None" || last == "" {
			continue
		}
		if i, ok := index[last]; ok {
			info.Fields[i].Value += "\n" + value
			continue
		}
		index[last] = len(info.Fields)
		info.Fields = append(info.Fields, Field{Key: last, Value: value})
	}
	return info
}
