package main

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

//go:embed template/PKGBUILD
var pkgbuildTemplate string

var versionPattern = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)$`)

type release struct {
	Version string
	Commit  string
	URL     string
	Built   time.Time
}

func (r release) LDFlags() string {
	flags := []string{
		"-X pms/ui.Version=" + r.Version,
		"-X pms/ui.GitCommit=" + r.Commit,
		"-X pms/ui.BuildTime=" + r.Built.UTC().Format(time.RFC3339),
	}
	return strings.Join(flags, " ")
}

func main() {
	version := os.Getenv("VERSION")
	if version == "" {
		fmt.Println("::error ::VERSION is required but missing")
		os.Exit(1)
	}

	r, err := newRelease(version, os.Getenv("GIT_COMMIT"), os.Getenv("REPO_URL"), time.Now())
	if err != nil {
		fmt.Printf("::error ::%v\n", err)
		os.Exit(1)
	}

	if err := writePKGBUILD("./pkgbuild/PKGBUILD", r); err != nil {
		fmt.Printf("::error ::Failed to update PKGBUILD: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("PKGBUILD updated successfully")
}

func newRelease(version, commit, url string, built time.Time) (release, error) {
	m := versionPattern.FindStringSubmatch(version)
	if m == nil {
		return release{}, fmt.Errorf("VERSION %q is not a semantic version", version)
	}
	if commit == "" {
		commit = "unknown"
	}
	return release{Version: m[1], Commit: commit, URL: strings.TrimSuffix(url, "/"), Built: built}, nil
}

func renderPKGBUILD(w io.Writer, r release) error {
	tmpl, err := template.New("PKGBUILD").Parse(pkgbuildTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}

func writePKGBUILD(path string, r release) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := renderPKGBUILD(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
