// Package prompt holds the prompt profiles sent to the upstream model.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var embedded []byte

var ErrUnknownProfile = errors.New("unknown prompt profile")

// Profile is one system/user prompt pair with optional per-engine model
// overrides keyed by engine name.
type Profile struct {
	Name   string            `yaml:"-"`
	Models map[string]string `yaml:"models"`
	System string            `yaml:"system"`
	User   string            `yaml:"user"`
}

// ModelFor returns the override for engine, or "" to keep the engine's model.
func (p Profile) ModelFor(engine string) string {
	return strings.TrimSpace(p.Models[engine])
}

type Set struct {
	Default  string              `yaml:"default"`
	Profiles map[string]*Profile `yaml:"profiles"`
}

// Load reads profiles from path, or the embedded defaults when path is empty.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(embedded)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts %s: %w", path, err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("prompts %s: %w", path, err)
	}
	return s, nil
}

func Parse(b []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("bad prompts yaml: %w", err)
	}
	if len(s.Profiles) == 0 {
		return nil, errors.New("no prompt profiles defined")
	}
	for name, p := range s.Profiles {
		if p == nil || strings.TrimSpace(p.System) == "" || strings.TrimSpace(p.User) == "" {
			return nil, fmt.Errorf("profile %q: system and user prompts are required", name)
		}
		p.Name = name
		p.System = strings.TrimSpace(p.System)
		p.User = strings.TrimSpace(p.User)
	}
	if s.Default == "" {
		s.Default = s.Names()[0]
	}
	if _, ok := s.Profiles[s.Default]; !ok {
		return nil, fmt.Errorf("default profile %q: %w", s.Default, ErrUnknownProfile)
	}
	return &s, nil
}

// Get returns the named profile; an empty name selects the default.
func (s *Set) Get(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = s.Default
	}
	p, ok := s.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q (have %s)", ErrUnknownProfile, name, strings.Join(s.Names(), ", "))
	}
	return *p, nil
}

func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Profiles))
	for n := range s.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithDefault returns a copy of s whose default profile is name.
func (s *Set) WithDefault(name string) (*Set, error) {
	p, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	cp := *s
	cp.Default = p.Name
	return &cp, nil
}
