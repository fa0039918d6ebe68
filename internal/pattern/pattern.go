// Package pattern matches target identifiers against glob patterns.
//
// Patterns use github.com/gobwas/glob syntax without separators, so `*`
// spans the dashes of a target triple: `*-apple-*` matches
// `aarch64-apple-darwin`. Supported metacharacters are `*`, `?`, `[...]`,
// `[!...]` and `{a,b}`; a backslash escapes the next character.
package pattern

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher is a compiled glob pattern.
type Matcher struct {
	raw       string
	g         glob.Glob
	literals  int
	wildcards int
}

// Compile compiles pattern into a Matcher.
func Compile(pattern string) (*Matcher, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	literals, wildcards := measure(pattern)
	return &Matcher{raw: pattern, g: g, literals: literals, wildcards: wildcards}, nil
}

// Match reports whether target matches the pattern.
func (m *Matcher) Match(target string) bool {
	return m.g.Match(target)
}

// String returns the source pattern.
func (m *Matcher) String() string {
	return m.raw
}

// Less orders matchers from most to least specific: more literal
// characters first, then fewer wildcards, then lexically.
func Less(a, b *Matcher) bool {
	if a.literals != b.literals {
		return a.literals > b.literals
	}
	if a.wildcards != b.wildcards {
		return a.wildcards < b.wildcards
	}
	return a.raw < b.raw
}

func measure(pattern string) (literals, wildcards int) {
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 < len(runes) {
				i++
			}
			literals++
		case '*', '?':
			wildcards++
		case '[':
			wildcards++
			i = skipTo(runes, i, ']')
		case '{':
			wildcards++
			i = skipTo(runes, i, '}')
		default:
			literals++
		}
	}
	return literals, wildcards
}

func skipTo(runes []rune, i int, closing rune) int {
	for j := i + 1; j < len(runes); j++ {
		if runes[j] == '\\' {
			j++
			continue
		}
		if runes[j] == closing {
			return j
		}
	}
	return len(runes)
}
