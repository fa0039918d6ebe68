package targets

import (
	"context"
	"errors"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/pattern"
)

// FileSource reads targets from a YAML document, for offline runs and tests:
//
//	targets:
//	  - name: x86_64-unknown-linux-gnu
//	    description: 64-bit Linux (kernel 3.2+, glibc 2.17+)
//	    tier: 1
//	    host_tools: true
//	    std: true
//	    cfgs:
//	      target_arch: [x86_64]
//	      unix: []
type FileSource struct {
	Path   string
	Filter *pattern.Filter
}

type fileTarget struct {
	Name     string              `yaml:"name"`
	Metadata `yaml:",inline"`
	Cfgs     map[string][]string `yaml:"cfgs"`
}

type fileDoc struct {
	Targets []fileTarget `yaml:"targets"`
}

// Targets reads and decodes the file.
func (s *FileSource) Targets(_ context.Context) ([]Target, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	return DecodeFile(data, s.Filter)
}

// AllNames returns the names of every target in the file, ignoring Filter.
func (s *FileSource) AllNames(_ context.Context) ([]string, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	ts, err := DecodeFile(data, nil)
	if err != nil {
		return nil, err
	}
	return Names(ts), nil
}

func (s *FileSource) read() ([]byte, error) {
	// #nosec G304 -- path comes from configuration.
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.WrapError(err, ferrors.CategoryNotFound, "target file not found").
				WithContext("path", s.Path).
				UserAction().
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read target file").
			WithContext("path", s.Path).
			Build()
	}
	return data, nil
}

// DecodeFile decodes a target YAML document.
func DecodeFile(data []byte, filter *pattern.Filter) ([]Target, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryTargetSource, "failed to decode target file").Build()
	}
	out := make([]Target, 0, len(doc.Targets))
	for _, ft := range doc.Targets {
		if ft.Name == "" {
			return nil, ferrors.TargetSourceError("target entry without name").Build()
		}
		if err := CheckName(ft.Name); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryTargetSource, "invalid target file entry").
				UserAction().
				Build()
		}
		if !filter.Allows(ft.Name) {
			continue
		}
		t := Target{Name: ft.Name, Metadata: ft.Metadata}
		keys := make([]string, 0, len(ft.Cfgs))
		for k := range ft.Cfgs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c := Cfg{Name: k}
			if len(ft.Cfgs[k]) > 0 {
				c.Values = ft.Cfgs[k]
			}
			t.Cfgs = append(t.Cfgs, c)
		}
		out = append(out, t)
	}
	return normalize(out), nil
}
