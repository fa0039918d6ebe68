package infofile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/logfields"
	"git.home.luguber.info/inful/targetdocs/internal/pattern"
)

// Set is the collection of info files of one directory, ordered from the
// most to the least specific pattern.
type Set struct {
	Dir   string
	Files []*File
}

// NewSet orders files by pattern priority and rejects duplicate patterns.
func NewSet(dir string, files []*File) (*Set, error) {
	sorted := append([]*File(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.matcher == nil || b.matcher == nil {
			return a.Name < b.Name
		}
		if pattern.Less(a.matcher, b.matcher) {
			return true
		}
		if pattern.Less(b.matcher, a.matcher) {
			return false
		}
		return a.Name < b.Name
	})

	var errs []error
	byPattern := make(map[string]string, len(sorted))
	for _, f := range sorted {
		if prev, dup := byPattern[f.Pattern]; dup {
			errs = append(errs, fmt.Errorf("%s: pattern %q already declared by %s", f.Name, f.Pattern, prev))
			continue
		}
		byPattern[f.Pattern] = f.Name
	}
	if len(errs) > 0 {
		return nil, ferrors.WrapError(errors.Join(errs...), ferrors.CategoryValidation, "invalid target info files").
			WithContext("dir", dir).
			UserAction().
			Build()
	}
	return &Set{Dir: dir, Files: sorted}, nil
}

// LoadDir parses every info file directly inside dir. Problems in all files
// are collected into a single validation error.
func LoadDir(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.WrapError(err, ferrors.CategoryNotFound, "target info directory not found").
				WithContext("dir", dir).
				UserAction().
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read target info directory").
			WithContext("dir", dir).
			Build()
	}

	var (
		files []*File
		errs  []error
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		// #nosec G304 -- path comes from listing the configured info directory.
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read target info file").
				WithContext("path", path).
				Build()
		}
		f, err := Parse(path, content)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Debug("Parsed target info file", logfields.InfoFile(f.Name), logfields.Pattern(f.Pattern), "sections", len(f.Sections))
		files = append(files, f)
	}
	if len(errs) > 0 {
		return nil, ferrors.WrapError(errors.Join(errs...), ferrors.CategoryValidation, "invalid target info files").
			WithContext("dir", dir).
			UserAction().
			Build()
	}

	set, err := NewSet(dir, files)
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded target info files", logfields.Path(dir), logfields.Count(len(set.Files)))
	return set, nil
}

// Matching returns the files whose pattern matches target, highest priority first.
func (s *Set) Matching(target string) []*File {
	var out []*File
	for _, f := range s.Files {
		if f.Matches(target) {
			out = append(out, f)
		}
	}
	return out
}
