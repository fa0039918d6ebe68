package pattern

import "strings"

var (
	filenameEscaper = strings.NewReplacer(
		"%", "%25",
		"*", "%2A",
		"?", "%3F",
		"[", "%5B",
		"]", "%5D",
		"{", "%7B",
		"}", "%7D",
		",", "%2C",
	)
	filenameUnescaper = strings.NewReplacer(
		"%25", "%",
		"%2A", "*", "%2a", "*",
		"%3F", "?", "%3f", "?",
		"%5B", "[", "%5b", "[",
		"%5D", "]", "%5d", "]",
		"%7B", "{", "%7b", "{",
		"%7D", "}", "%7d", "}",
		"%2C", ",", "%2c", ",",
	)
)

// EscapeFilename returns a file name stem for pattern that is portable to
// file systems rejecting glob metacharacters.
func EscapeFilename(pattern string) string {
	return filenameEscaper.Replace(pattern)
}

// UnescapeFilename reverses EscapeFilename. Literal metacharacters pass through.
func UnescapeFilename(stem string) string {
	return filenameUnescaper.Replace(stem)
}

// FilenameMatches reports whether a file name stem declares pattern, either
// literally or in escaped form.
func FilenameMatches(stem, pattern string) bool {
	return stem == pattern || UnescapeFilename(stem) == pattern
}
