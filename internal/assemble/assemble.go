// Package assemble merges the sections of every info file matching a target
// into that target's page, stubbing the sections nobody wrote.
package assemble

import (
	"strings"

	"git.home.luguber.info/inful/targetdocs/internal/infofile"
	"git.home.luguber.info/inful/targetdocs/internal/sections"
	"git.home.luguber.info/inful/targetdocs/internal/targets"
)

// DefaultStubText is the content of a section no matching file provides.
const DefaultStubText = "Unknown."

// Options controls assembly.
type Options struct {
	StubText string
}

func (o Options) stub() string {
	if o.StubText == "" {
		return DefaultStubText
	}
	return o.StubText
}

// ResolvedSection is a section of a page with the file it came from.
type ResolvedSection struct {
	Name    string
	Content string
	Stubbed bool
	Source  string
}

// Page is the assembled documentation for one target.
type Page struct {
	Target      targets.Target
	Maintainers []string
	Footnotes   []string
	// Sections has one entry per sections.Names, in that order.
	Sections []ResolvedSection
	// Sources lists the matching info files, highest priority first.
	Sources []string
}

// Assemble builds the page of t from the files of set matching it. Each
// section comes from the highest-priority file providing it. A heading with
// nothing under it does not provide the section.
func Assemble(t targets.Target, set *infofile.Set, opts Options) *Page {
	page := &Page{Target: t, Sections: make([]ResolvedSection, len(sections.Names))}
	for i, name := range sections.Names {
		page.Sections[i] = ResolvedSection{Name: name, Content: opts.stub(), Stubbed: true}
	}

	seenMaintainer := map[string]struct{}{}
	for _, f := range set.Matching(t.Name) {
		page.Sources = append(page.Sources, f.Name)

		for _, m := range f.Maintainers {
			if _, dup := seenMaintainer[m]; dup {
				continue
			}
			seenMaintainer[m] = struct{}{}
			page.Maintainers = append(page.Maintainers, m)
		}
		page.Footnotes = append(page.Footnotes, f.Footnotes[t.Name]...)

		for _, s := range f.Sections {
			i := sections.Index(s.Name)
			if i < 0 || !page.Sections[i].Stubbed || strings.TrimSpace(s.Content) == "" {
				continue
			}
			page.Sections[i] = ResolvedSection{Name: s.Name, Content: s.Content, Source: f.Name}
		}
	}
	return page
}

// AssembleAll assembles a page per target, in target order.
func AssembleAll(ts []targets.Target, set *infofile.Set, opts Options) []*Page {
	pages := make([]*Page, 0, len(ts))
	for _, t := range ts {
		pages = append(pages, Assemble(t, set, opts))
	}
	return pages
}

// Stubbed returns the names of stubbed sections.
func (p *Page) Stubbed() []string {
	var out []string
	for _, s := range p.Sections {
		if s.Stubbed {
			out = append(out, s.Name)
		}
	}
	return out
}
