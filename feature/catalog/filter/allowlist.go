package filter

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Allowlist is an immutable, versioned set of legality set ids treated as the current format.
type Allowlist struct {
	Version string
	sets    map[string]struct{}
}

// NewAllowlist builds an allow-list from set ids. Blank ids are ignored.
func NewAllowlist(version string, sets []string) *Allowlist {
	a := &Allowlist{Version: version, sets: make(map[string]struct{}, len(sets))}
	for _, s := range sets {
		s = strings.TrimSpace(s)
		if s != "" {
			a.sets[s] = struct{}{}
		}
	}
	return a
}

// Contains reports whether setID belongs to the allow-list.
func (a *Allowlist) Contains(setID string) bool {
	_, ok := a.sets[setID]
	return ok
}

// Sets returns the set ids in sorted order.
func (a *Allowlist) Sets() []string {
	out := make([]string, 0, len(a.sets))
	for s := range a.sets {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of set ids.
func (a *Allowlist) Len() int {
	return len(a.sets)
}

type allowlistFile struct {
	Version string   `yaml:"version"`
	Sets    []string `yaml:"sets"`
}

// ParseAllowlist decodes the YAML allow-list document.
func ParseAllowlist(data []byte) (*Allowlist, error) {
	var f allowlistFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid allow-list: %w", err)
	}
	if strings.TrimSpace(f.Version) == "" {
		return nil, fmt.Errorf("invalid allow-list: version is required")
	}
	a := NewAllowlist(f.Version, f.Sets)
	if a.Len() == 0 {
		return nil, fmt.Errorf("invalid allow-list %s: no sets", f.Version)
	}
	return a, nil
}

// LoadAllowlist reads and parses the allow-list file at path.
func LoadAllowlist(path string) (*Allowlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read allow-list: %w", err)
	}
	return ParseAllowlist(data)
}

// Provider hands out the current allow-list and lets it be swapped atomically.
type Provider struct {
	current atomic.Pointer[Allowlist]
}

// NewProvider creates a provider holding initial.
func NewProvider(initial *Allowlist) *Provider {
	p := &Provider{}
	p.current.Store(initial)
	return p
}

// Current returns the allow-list in effect.
func (p *Provider) Current() *Allowlist {
	return p.current.Load()
}

// Set replaces the allow-list in effect.
func (p *Provider) Set(a *Allowlist) {
	p.current.Store(a)
}
