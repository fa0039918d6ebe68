// Package infofile loads target info files: markdown documents whose YAML
// frontmatter declares a target glob pattern, maintainers and footnotes, and
// whose body holds the documentation sections for the matching targets.
package infofile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/targetdocs/internal/frontmatter"
	"git.home.luguber.info/inful/targetdocs/internal/pattern"
	"git.home.luguber.info/inful/targetdocs/internal/sections"
)

// Extension is the file extension of target info files.
const Extension = ".md"

var (
	// ErrMissingPattern reports a file without a pattern key.
	ErrMissingPattern = errors.New("frontmatter is missing required key \"pattern\"")
	// ErrPatternFilename reports a pattern that disagrees with its file name.
	ErrPatternFilename = errors.New("pattern does not match file name")
	// ErrMissingFrontmatter reports a file without a frontmatter block.
	ErrMissingFrontmatter = errors.New("file has no frontmatter block")
)

// File is one parsed target info file.
type File struct {
	Path        string
	Name        string
	Pattern     string
	Maintainers []string
	Footnotes   map[string][]string
	Sections    []sections.Section

	matcher *pattern.Matcher
}

type fields struct {
	Pattern     string              `yaml:"pattern"`
	Maintainers []string            `yaml:"maintainers"`
	Footnotes   map[string][]string `yaml:"footnotes"`
}

// Parse parses the content of the info file called name. All problems in
// the file are reported together.
func Parse(name string, content []byte) (*File, error) {
	base := filepath.Base(name)
	fm, body, had, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", base, err)
	}
	if !had {
		return nil, fmt.Errorf("%s: %w", base, ErrMissingFrontmatter)
	}

	var f fields
	if err := frontmatter.Decode(fm, &f, true); err != nil {
		return nil, fmt.Errorf("%s: frontmatter: %w", base, err)
	}

	var errs []error
	file := &File{
		Path:        name,
		Name:        base,
		Pattern:     strings.TrimSpace(f.Pattern),
		Maintainers: cleanList(f.Maintainers),
		Footnotes:   map[string][]string{},
	}
	for target, notes := range f.Footnotes {
		file.Footnotes[strings.TrimSpace(target)] = cleanList(notes)
	}

	if file.Pattern == "" {
		errs = append(errs, ErrMissingPattern)
	} else {
		stem := strings.TrimSuffix(base, Extension)
		if !pattern.FilenameMatches(stem, file.Pattern) {
			errs = append(errs, fmt.Errorf("%w: pattern %q, file name %q (expected %q or %q)",
				ErrPatternFilename, file.Pattern, base, file.Pattern+Extension, pattern.EscapeFilename(file.Pattern)+Extension))
		}
		m, err := pattern.Compile(file.Pattern)
		if err != nil {
			errs = append(errs, err)
		}
		file.matcher = m
	}

	secs, err := sections.Extract(body)
	if err != nil {
		errs = append(errs, err)
	}
	file.Sections = secs

	if len(errs) > 0 {
		return nil, prefixErrors(base, errs)
	}
	return file, nil
}

// Matches reports whether the file's pattern matches target.
func (f *File) Matches(target string) bool {
	return f.matcher != nil && f.matcher.Match(target)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// prefixErrors flattens joined errors so that every line names the file.
func prefixErrors(name string, errs []error) error {
	var flat []error
	for _, err := range errs {
		if j, ok := err.(interface{ Unwrap() []error }); ok {
			flat = append(flat, j.Unwrap()...)
			continue
		}
		flat = append(flat, err)
	}
	out := make([]error, 0, len(flat))
	for _, err := range flat {
		out = append(out, fmt.Errorf("%s: %w", name, err))
	}
	return errors.Join(out...)
}
