package targets

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/logfields"
	"git.home.luguber.info/inful/targetdocs/internal/pattern"
)

// DefaultConcurrency bounds parallel compiler invocations.
const DefaultConcurrency = 8

// RustcSource queries a rustc binary for targets and their metadata.
type RustcSource struct {
	Rustc       string
	Runner      Runner
	Concurrency int
	Filter      *pattern.Filter
	// SkipMetadata lists targets only, without per-target queries.
	SkipMetadata bool
}

// NewRustcSource returns a source for the given compiler binary.
func NewRustcSource(rustc string) *RustcSource {
	if rustc == "" {
		rustc = "rustc"
	}
	return &RustcSource{Rustc: rustc, Runner: ExecRunner{}, Concurrency: DefaultConcurrency}
}

// specEnv unlocks `-Z unstable-options` on stable toolchains.
var specEnv = []string{"RUSTC_BOOTSTRAP=1"}

// Targets lists targets with `--print target-list`, then fetches each
// target's spec metadata and cfgs in parallel.
func (s *RustcSource) Targets(ctx context.Context) ([]Target, error) {
	start := time.Now()
	all, err := s.AllNames(ctx)
	if err != nil {
		return nil, err
	}
	names := s.Filter.Apply(all)

	result := make([]Target, len(names))
	for i, n := range names {
		result[i].Name = n
	}
	if !s.SkipMetadata {
		g, gctx := errgroup.WithContext(ctx)
		limit := s.Concurrency
		if limit <= 0 {
			limit = DefaultConcurrency
		}
		g.SetLimit(limit)
		for i := range result {
			t := &result[i]
			g.Go(func() error {
				return s.describe(gctx, t)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	slog.Debug("Queried compiler targets",
		logfields.Count(len(result)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return normalize(result), nil
}

// AllNames runs `--print target-list`, ignoring Filter.
func (s *RustcSource) AllNames(ctx context.Context) ([]string, error) {
	out, err := s.Runner.Run(ctx, s.Rustc, []string{"--print", "target-list"}, nil)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryTargetSource, "failed to list targets").
			WithContext("rustc", s.Rustc).
			Build()
	}
	names := parseLines(out)
	for _, n := range names {
		if err := CheckName(n); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryTargetSource, "unexpected target list output").
				WithContext("rustc", s.Rustc).
				Build()
		}
	}
	return names, nil
}

func (s *RustcSource) describe(ctx context.Context, t *Target) error {
	spec, err := s.Runner.Run(ctx, s.Rustc, []string{"-Z", "unstable-options", "--print", "target-spec-json", "--target", t.Name}, specEnv)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryTargetSource, "failed to query target spec").
			WithContext("target", t.Name).
			Build()
	}
	md, err := ParseSpecMetadata(spec)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryTargetSource, "failed to decode target spec").
			WithContext("target", t.Name).
			Build()
	}
	t.Metadata = md

	cfg, err := s.Runner.Run(ctx, s.Rustc, []string{"--print", "cfg", "--target", t.Name}, nil)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryTargetSource, "failed to query target cfg").
			WithContext("target", t.Name).
			Build()
	}
	t.Cfgs = ParseCfg(cfg)
	return nil
}

// ParseSpecMetadata extracts the `metadata` object of a target spec JSON document.
func ParseSpecMetadata(spec []byte) (Metadata, error) {
	var doc struct {
		Metadata Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(spec, &doc); err != nil {
		return Metadata{}, err
	}
	doc.Metadata.Description = strings.TrimSpace(doc.Metadata.Description)
	return doc.Metadata, nil
}

// ParseCfg parses `--print cfg` output. Keys keep their first-seen order;
// repeated keys accumulate values.
func ParseCfg(out []byte) []Cfg {
	var cfgs []Cfg
	index := map[string]int{}
	for _, line := range parseLines(out) {
		name, value, hasValue := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		i, seen := index[name]
		if !seen {
			i = len(cfgs)
			index[name] = i
			cfgs = append(cfgs, Cfg{Name: name})
		}
		if hasValue {
			cfgs[i].Values = append(cfgs[i].Values, strings.Trim(strings.TrimSpace(value), `"`))
		}
	}
	return cfgs
}

func parseLines(out []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func (s *RustcSource) String() string {
	return fmt.Sprintf("rustc(%s)", s.Rustc)
}
