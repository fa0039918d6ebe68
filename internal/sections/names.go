package sections

import "strings"

// Names lists the sections every target page carries, in page order.
var Names = []string{
	"Overview",
	"Requirements",
	"Testing",
	"Building the target",
	"Cross-compilation",
	"Building Rust programs",
}

// Canonical returns the canonical spelling of a section heading. Matching
// ignores case and surrounding whitespace.
func Canonical(heading string) (string, bool) {
	h := strings.TrimSpace(heading)
	for _, n := range Names {
		if strings.EqualFold(h, n) {
			return n, true
		}
	}
	return "", false
}

// IsKnown reports whether heading names one of the fixed sections.
func IsKnown(heading string) bool {
	_, ok := Canonical(heading)
	return ok
}

// Index returns the page position of a canonical section name, or -1.
func Index(name string) int {
	for i, n := range Names {
		if n == name {
			return i
		}
	}
	return -1
}
