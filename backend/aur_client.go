package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultAURURL = "https://aur.archlinux.org/rpc/v5/info"

type aurResponse struct {
	Results []aurPackage `json:"results"`
}

type aurPackage struct {
	Name    string `json:"Name"`
	Version string `json:"Version"`
}

// VersionLookup maps package names to their latest known version.
type VersionLookup interface {
	Versions(ctx context.Context, names []string) (map[string]string, error)
}

type AURClient struct {
	BaseURL string
	HTTP    *http.Client
	Cache   *VersionCache
}

func NewAURClient(cache *VersionCache) *AURClient {
	return &AURClient{
		BaseURL: DefaultAURURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Cache:   cache,
	}
}

func (c *AURClient) Versions(ctx context.Context, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return make(map[string]string), nil
	}

	sorted := slices.Clone(names)
	slices.Sort(sorted)
	key := strings.Join(sorted, ",")
	if c.Cache != nil {
		if cached, ok := c.Cache.Get(key); ok {
			return cached, nil
		}
	}

	params := url.Values{}
	for _, name := range sorted {
		params.Add("arg[]", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build AUR request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query AUR: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to query AUR: %s", resp.Status)
	}

	var aurResp aurResponse
	if err := json.NewDecoder(resp.Body).Decode(&aurResp); err != nil {
		return nil, fmt.Errorf("failed to decode AUR response: %w", err)
	}

	versions := make(map[string]string, len(aurResp.Results))
	for _, pkg := range aurResp.Results {
		versions[pkg.Name] = pkg.Version
	}

	if c.Cache != nil {
		c.Cache.Set(key, versions)
	}
	return versions, nil
}

// AURSource decorates a source with AUR versions for its foreign rows.
// Lookup failures leave the rows untouched.
type AURSource struct {
	Source
	Lookup VersionLookup
}

func (s *AURSource) Search(ctx context.Context, term Term) ([]Row, error) {
	rows, err := s.Source.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0)
	for _, r := range rows {
		if r.IsForeign() {
			names = append(names, r.Name)
		}
	}
	if len(names) == 0 {
		return rows, nil
	}

	versions, err := s.Lookup.Versions(ctx, names)
	if err != nil {
		zap.S().Warnw("could not check AUR versions", "err", err)
		return rows, nil
	}
	for i := range rows {
		if !rows[i].IsForeign() {
			continue
		}
		if v, ok := versions[rows[i].Name]; ok && v != rows[i].Version {
			rows[i].NewVersion = Some(v)
		}
	}
	return rows, nil
}
