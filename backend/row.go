package backend

import (
	"encoding/json"
	"sort"
	"strings"
)

// ForeignDB is the db name shown for packages not found in any sync repo.
const ForeignDB = "Foreign"

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

func (o Optional[T]) OrElse(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Row is one package as found by a search.
type Row struct {
	DB          string           `json:"db"`
	Name        string           `json:"pkg"`
	Version     string           `json:"ver"`
	Groups      Optional[string] `json:"grps"`
	Installed   bool             `json:"ins"`
	NewVersion  Optional[string] `json:"new"`
	Description string           `json:"desc"`
}

func (r Row) IsForeign() bool {
	return r.DB == ForeignDB
}

// GroupList splits the whitespace separated groups field.
func (r Row) GroupList() []string {
	return strings.Fields(r.Groups.OrElse(""))
}

// SortRows orders rows by package name, keeping the relative order of
// equal names.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})
}
