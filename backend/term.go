package backend

import (
	"fmt"
	"regexp"
)

// Term is a compiled, case-insensitive search pattern.
type Term struct {
	Pattern string
	re      *regexp.Regexp
}

func NewTerm(pattern string) (Term, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Term{}, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}
	return Term{Pattern: pattern, re: re}, nil
}

func MustTerm(pattern string) Term {
	t, err := NewTerm(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Term) Match(s string) bool {
	if t.re == nil {
		return true
	}
	return t.re.MatchString(s)
}

// Matches returns the byte ranges of all non-empty matches in s.
func (t Term) Matches(s string) [][]int {
	if t.re == nil {
		return nil
	}
	var out [][]int
	for _, loc := range t.re.FindAllStringIndex(s, -1) {
		if loc[1] > loc[0] {
			out = append(out, loc)
		}
	}
	return out
}
