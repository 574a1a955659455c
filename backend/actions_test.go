package backend

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls []string
	fail  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	for prefix, err := range f.fail {
		if strings.Contains(call, prefix) {
			return err
		}
	}
	return nil
}

func sampleRows() []Row {
	return []Row{
		{DB: "core", Name: "a", Version: "1"},
		{DB: "core", Name: "b", Version: "1", Installed: true},
		{DB: "core", Name: "c", Version: "1", Installed: true},
		{DB: "extra", Name: "d", Version: "1"},
		{DB: "extra", Name: "e", Version: "1"},
		{DB: "extra", Name: "f", Version: "1"},
	}
}

func TestPartitionSelection(t *testing.T) {
	rows := sampleRows()

	plan := PartitionSelection(rows, map[int]bool{2: true, 5: true}, 0)
	assert.Equal(t, []int{2}, plan.Remove)
	assert.Equal(t, []int{5}, plan.Install)

	plan = PartitionSelection(rows, map[int]bool{}, 1)
	assert.Equal(t, []int{1}, plan.Remove)
	assert.Empty(t, plan.Install)

	plan = PartitionSelection(rows, map[int]bool{4: true, 0: true, 3: false}, 1)
	assert.Empty(t, plan.Remove)
	assert.Equal(t, []int{0, 4}, plan.Install)

	assert.True(t, PartitionSelection(nil, nil, 0).Empty())
}

func rootEscalator() Escalator {
	return Escalator{euid: func() int { return 0 }}
}

func TestExecutorRemovesBeforeInstalling(t *testing.T) {
	rows := sampleRows()
	runner := &fakeRunner{}
	exe := Executor{
		Runner:      runner,
		Escalator:   rootEscalator(),
		RemoveArgs:  []string{"-Rsc"},
		InstallArgs: []string{"-S"},
	}

	err := exe.Apply(context.Background(), rows, PartitionSelection(rows, map[int]bool{2: true, 5: true}, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"pacman -Rsc c", "pacman -S f"}, runner.calls)
}

func TestExecutorRunsInstallAfterFailedRemove(t *testing.T) {
	rows := sampleRows()
	runner := &fakeRunner{fail: map[string]error{"-Rsc": errors.New("exit status 1")}}
	exe := Executor{Runner: runner, Escalator: rootEscalator(), RemoveArgs: []string{"-Rsc"}, InstallArgs: []string{"-S"}}

	err := exe.Apply(context.Background(), rows, Plan{Remove: []int{1, 2}, Install: []int{0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remove failed")
	assert.Equal(t, []string{"pacman -Rsc b c", "pacman -S a"}, runner.calls)
}

func TestEscalatorWrap(t *testing.T) {
	have := func(tools ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, t := range tools {
				if t == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", exec.ErrNotFound
		}
	}
	user := func() int { return 1000 }

	tests := []struct {
		name  string
		tool  string
		found []string
		want  string
	}{
		{"configured", "doas", []string{"sudo", "doas"}, "doas pacman -S x"},
		{"fallback", "doas", []string{"sudo"}, "sudo pacman -S x"},
		{"default order", "", []string{"pkexec", "doas"}, "doas pacman -S x"},
		{"nothing found", "", nil, "sudo pacman -S x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Escalator{Tool: tt.tool, lookPath: have(tt.found...), euid: user}
			assert.Equal(t, tt.want, strings.Join(e.Wrap("pacman", "-S", "x"), " "))
		})
	}

	assert.Equal(t, []string{"pacman", "-S", "x"}, rootEscalator().Wrap("pacman", "-S", "x"))
}

func TestRowJSON(t *testing.T) {
	rows := []Row{
		{DB: "core", Name: "bash", Version: "5.2", Installed: true, Description: "shell"},
		{DB: ForeignDB, Name: "yay-bin", Version: "12.0", Groups: Some("aur"), NewVersion: Some("12.1"), Description: "helper"},
	}
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"db":"core","pkg":"bash","ver":"5.2","grps":null,"ins":true,"new":null,"desc":"shell"},
		{"db":"Foreign","pkg":"yay-bin","ver":"12.0","grps":"aur","ins":false,"new":"12.1","desc":"helper"}
	]`, string(data))

	var back []Row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rows, back)
}

func TestOptional(t *testing.T) {
	v, ok := None[string]().Get()
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, "x", None[string]().OrElse("x"))
	assert.Equal(t, "y", Some("y").OrElse("x"))
}
