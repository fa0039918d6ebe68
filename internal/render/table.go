package render

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/targetdocs/internal/assemble"
)

// Table renders the platform support table, one block per tier. Page links
// are linkPrefix joined with the page file name.
func Table(pages []*assemble.Page, linkPrefix string) string {
	groups := map[string][]*assemble.Page{}
	for _, p := range pages {
		tier := p.Target.Metadata.TierLabel()
		groups[tier] = append(groups[tier], p)
	}
	tiers := make([]string, 0, len(groups))
	for t := range groups {
		tiers = append(tiers, t)
	}
	// Numbered tiers ascending, "unknown" last.
	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i] == "unknown" || tiers[j] == "unknown" {
			return tiers[j] == "unknown" && tiers[i] != "unknown"
		}
		if len(tiers[i]) != len(tiers[j]) {
			return len(tiers[i]) < len(tiers[j])
		}
		return tiers[i] < tiers[j]
	})

	var b strings.Builder
	for _, tier := range tiers {
		fmt.Fprintf(&b, "### Tier %s\n\n", tier)
		b.WriteString("target | std | host | notes\n")
		b.WriteString("-------|:---:|:----:|-------\n")
		var notes []string
		for _, p := range groups[tier] {
			md := p.Target.Metadata
			link := path.Join(linkPrefix, FileName(p.Target.Name))
			cell := escapeCell(md.Description)
			for i, n := range p.Footnotes {
				label := fmt.Sprintf("%s-%d", p.Target.Name, i+1)
				cell += fmt.Sprintf(" [^%s]", label)
				notes = append(notes, fmt.Sprintf("[^%s]: %s", label, n))
			}
			fmt.Fprintf(&b, "[`%s`](%s) | %s | %s | %s\n",
				p.Target.Name, link, mark(md.Std), mark(md.HostTools), strings.TrimSpace(cell))
		}
		b.WriteString("\n")
		for _, n := range notes {
			b.WriteString(n)
			b.WriteString("\n")
		}
		if len(notes) > 0 {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Summary renders a nested list of page links for a book summary.
func Summary(pages []*assemble.Page, linkPrefix string) string {
	var b strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&b, "- [%s](%s)\n", p.Target.Name, path.Join(linkPrefix, FileName(p.Target.Name)))
	}
	return b.String()
}

func mark(v *bool) string {
	switch {
	case v == nil:
		return "?"
	case *v:
		return "✓"
	default:
		return "*"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
