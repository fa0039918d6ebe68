package render

import (
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/targetdocs/internal/frontmatter"
)

// Info is what an existing page file says about itself.
type Info struct {
	Generated   bool
	Target      string
	Fingerprint string
}

// Inspect reads the frontmatter of an existing page. Files without
// frontmatter or with unparsable frontmatter are reported as not generated.
func Inspect(content []byte) Info {
	fm, _, had, err := frontmatter.Split(content)
	if err != nil || !had {
		return Info{}
	}
	fields, err := frontmatter.ParseYAML(fm)
	if err != nil {
		return Info{}
	}
	gen, _ := fields[keyGeneratedBy].(string)
	target, _ := fields[keyTarget].(string)
	fp, _ := fields[mdfp.FingerprintField].(string)
	return Info{Generated: gen == GeneratedBy, Target: target, Fingerprint: fp}
}
