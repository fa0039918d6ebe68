// Package render turns assembled pages into markdown documents.
package render

import (
	"fmt"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/targetdocs/internal/assemble"
	"git.home.luguber.info/inful/targetdocs/internal/frontmatter"
)

// GeneratedBy marks pages this tool owns; stale page cleanup only touches
// files carrying it.
const GeneratedBy = "targetdocs"

const (
	keyTarget      = "target"
	keyTier        = "tier"
	keyGeneratedBy = "generated_by"
	keyRevision    = "source_revision"
	keySources     = "sources"
)

// Meta is per-run information stamped into page frontmatter.
type Meta struct {
	// Revision of the info directory; excluded from the fingerprint.
	Revision string
}

// Page renders p as a markdown document with a fingerprinted frontmatter block.
func Page(p *assemble.Page, meta Meta) ([]byte, error) {
	body := pageBody(p)

	hashed := []frontmatter.Field{
		{Key: keyTarget, Value: p.Target.Name},
		{Key: keyTier, Value: p.Target.Metadata.TierLabel()},
		{Key: keyGeneratedBy, Value: GeneratedBy},
		{Key: keySources, Value: p.Sources},
	}
	if len(p.Sources) == 0 {
		hashed = hashed[:3]
	}
	fp, err := fingerprint(hashed, body)
	if err != nil {
		return nil, err
	}

	fields := make([]frontmatter.Field, 0, len(hashed)+2)
	fields = append(fields, hashed...)
	fields = append(fields,
		frontmatter.Field{Key: keyRevision, Value: meta.Revision},
		frontmatter.Field{Key: mdfp.FingerprintField, Value: fp},
	)
	fm, err := frontmatter.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("render frontmatter for %s: %w", p.Target.Name, err)
	}
	return frontmatter.Join(fm, []byte(body)), nil
}

func fingerprint(fields []frontmatter.Field, body string) (string, error) {
	fm, err := frontmatter.Marshal(fields)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), body), nil
}

func pageBody(p *assemble.Page) string {
	var b strings.Builder
	md := p.Target.Metadata

	fmt.Fprintf(&b, "# `%s`\n\n", p.Target.Name)
	fmt.Fprintf(&b, "**Tier: %s**\n\n", md.TierLabel())
	if md.Description != "" {
		b.WriteString(md.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "- Standard library: %s\n", support(md.Std, "full", "none"))
	fmt.Fprintf(&b, "- Host tools: %s\n\n", support(md.HostTools, "yes", "no"))

	if len(p.Footnotes) > 0 {
		b.WriteString("Notes:\n\n")
		for _, n := range p.Footnotes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Maintainers\n\n")
	if len(p.Maintainers) == 0 {
		b.WriteString("This target does not have any maintainers.\n\n")
	} else {
		b.WriteString("This target is maintained by:\n\n")
		for _, m := range p.Maintainers {
			fmt.Fprintf(&b, "- %s\n", m)
		}
		b.WriteString("\n")
	}

	for _, s := range p.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Name)
		if s.Content != "" {
			b.WriteString(s.Content)
			b.WriteString("\n\n")
		}
	}

	if len(p.Target.Cfgs) > 0 {
		b.WriteString("## `cfg`s\n\n")
		b.WriteString("| Name | Value |\n")
		b.WriteString("| ---- | ----- |\n")
		for _, c := range p.Target.Cfgs {
			if len(c.Values) == 0 {
				fmt.Fprintf(&b, "| `%s` | |\n", c.Name)
				continue
			}
			vals := make([]string, 0, len(c.Values))
			for _, v := range c.Values {
				vals = append(vals, "`"+v+"`")
			}
			fmt.Fprintf(&b, "| `%s` | %s |\n", c.Name, strings.Join(vals, ", "))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func support(v *bool, yes, no string) string {
	switch {
	case v == nil:
		return "unknown"
	case *v:
		return yes
	default:
		return no
	}
}

// FileName returns the page file name for a target.
func FileName(target string) string {
	return target + ".md"
}
