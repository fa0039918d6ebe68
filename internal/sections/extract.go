// Package sections splits target info markdown into the fixed set of named sections.
package sections

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	// ErrUnknownSection reports a level-2 heading outside Names.
	ErrUnknownSection = errors.New("unknown section")
	// ErrDuplicateSection reports a section heading repeated in one document.
	ErrDuplicateSection = errors.New("duplicate section")
	// ErrPreamble reports content before the first section heading.
	ErrPreamble = errors.New("content before first section")
)

// Section is one named block of markdown.
type Section struct {
	Name    string
	Content string
}

type heading struct {
	name      string
	lineStart int
	bodyStart int
	line      int
}

// Extract parses body and returns its sections in document order. Only
// level-2 headings start a section; deeper headings stay in the content of
// the enclosing section. Every problem found is returned, joined.
func Extract(body []byte) ([]Section, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var (
		heads []heading
		errs  []error
	)
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*gmast.Heading)
		if !ok || h.Level != 2 {
			continue
		}
		if h.Lines().Len() == 0 {
			errs = append(errs, fmt.Errorf("empty heading: %w", ErrUnknownSection))
			continue
		}
		first := h.Lines().At(0)
		start := lineStart(body, first.Start)
		end := lineEnd(body, first.Start)
		if !isATX(body[start:first.Start]) {
			end = setextEnd(body, start)
		}
		heads = append(heads, heading{
			name:      plainText(h, body),
			lineStart: start,
			bodyStart: end,
			line:      bytes.Count(body[:start], []byte("\n")) + 1,
		})
	}

	preambleEnd := len(body)
	if len(heads) > 0 {
		preambleEnd = heads[0].lineStart
	}
	if strings.TrimSpace(string(body[:preambleEnd])) != "" {
		errs = append(errs, fmt.Errorf("line 1: %w", ErrPreamble))
	}

	seen := make(map[string]int, len(heads))
	out := make([]Section, 0, len(heads))
	for i, h := range heads {
		stop := len(body)
		if i+1 < len(heads) {
			stop = heads[i+1].lineStart
		}
		name, ok := Canonical(h.name)
		if !ok {
			errs = append(errs, fmt.Errorf("line %d: %w %q (expected one of: %s)", h.line, ErrUnknownSection, h.name, strings.Join(Names, ", ")))
			continue
		}
		if prev, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("line %d: %w %q (first at line %d)", h.line, ErrDuplicateSection, name, prev))
			continue
		}
		seen[name] = h.line
		out = append(out, Section{Name: name, Content: trimBlankLines(string(body[h.bodyStart:stop]))})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func plainText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func isATX(prefix []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(prefix, " "), []byte("#"))
}

// setextEnd returns the offset just past the `---` underline of a setext
// heading whose text starts at start.
func setextEnd(src []byte, start int) int {
	pos := start
	for pos < len(src) {
		next := lineEnd(src, pos)
		line := bytes.TrimSpace(src[pos:next])
		if len(line) > 0 && len(bytes.Trim(line, "-")) == 0 {
			return next
		}
		pos = next
	}
	return len(src)
}

func lineStart(src []byte, pos int) int {
	if i := bytes.LastIndexByte(src[:pos], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

func lineEnd(src []byte, pos int) int {
	if pos >= len(src) {
		return len(src)
	}
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(src)
}

func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
