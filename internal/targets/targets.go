// Package targets lists compilation targets and their metadata.
package targets

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Metadata is the documentation metadata the compiler reports for a target.
type Metadata struct {
	Description string `json:"description" yaml:"description"`
	Tier        *int   `json:"tier" yaml:"tier"`
	HostTools   *bool  `json:"host_tools" yaml:"host_tools"`
	Std         *bool  `json:"std" yaml:"std"`
}

// TierLabel renders the tier for display, "unknown" when not reported.
func (m Metadata) TierLabel() string {
	if m.Tier == nil {
		return "unknown"
	}
	return strconv.Itoa(*m.Tier)
}

// Cfg is one `cfg` key with its values, as printed by `rustc --print cfg`.
// Flag cfgs such as `unix` have no values.
type Cfg struct {
	Name   string
	Values []string
}

// Target is one compilation target.
type Target struct {
	Name     string
	Metadata Metadata
	Cfgs     []Cfg
}

// Source produces the list of targets to document.
type Source interface {
	Targets(ctx context.Context) ([]Target, error)
}

// Lister is implemented by sources that can name every target they know,
// including those their include filter drops.
type Lister interface {
	AllNames(ctx context.Context) ([]string, error)
}

// AllNames returns every target name src knows. Sources that are not a
// Lister yield the names of listed, the targets they returned.
func AllNames(ctx context.Context, src Source, listed []Target) ([]string, error) {
	l, ok := src.(Lister)
	if !ok {
		return Names(listed), nil
	}
	return l.AllNames(ctx)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// CheckName rejects names that cannot serve as a page file name: a target
// name is a single path element of letters, digits, '_', '-' and '.'.
func CheckName(name string) error {
	if !namePattern.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid target name %q", name)
	}
	return nil
}

// Names returns the target names in order.
func Names(ts []Target) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

// normalize sorts targets by name and drops duplicates, keeping the first.
func normalize(ts []Target) []Target {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Name < ts[j].Name })
	out := ts[:0]
	for i, t := range ts {
		if i > 0 && t.Name == out[len(out)-1].Name {
			continue
		}
		out = append(out, t)
	}
	return out
}
