package render

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MarkerStart = "<!-- TARGET SECTION START -->"
	MarkerEnd   = "<!-- TARGET SECTION END -->"
)

var ErrMarkers = errors.New("generated section markers missing or out of order")

// Splice replaces everything between MarkerStart and MarkerEnd in doc with
// generated. Text outside the markers is preserved byte for byte.
func Splice(doc, generated string) (string, error) {
	start := strings.Index(doc, MarkerStart)
	end := strings.Index(doc, MarkerEnd)
	if start < 0 || end < 0 || end < start {
		return "", ErrMarkers
	}
	if strings.Count(doc, MarkerStart) > 1 || strings.Count(doc, MarkerEnd) > 1 {
		return "", fmt.Errorf("%w: markers appear more than once", ErrMarkers)
	}
	var b strings.Builder
	b.WriteString(doc[:start+len(MarkerStart)])
	b.WriteString("\n\n")
	b.WriteString(strings.TrimRight(generated, "\n"))
	b.WriteString("\n\n")
	b.WriteString(doc[end:])
	return b.String(), nil
}
