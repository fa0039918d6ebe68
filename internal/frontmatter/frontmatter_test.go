package frontmatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\npattern: \"*-linux-*\"\n---\n## Overview\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("pattern: \"*-linux-*\"\n"), fm)
	require.Equal(t, []byte("## Overview\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	require.False(t, had)
}

func TestSplit_CRLF_IsNormalized(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_EmptyFrontmatterBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Hi\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Hi\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nkey: value\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Empty(t, body)
}

func TestJoin_RoundTrip(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")
	fm, body, _, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, input, Join(fm, body))
}

func TestDecode_StrictRejectsUnknownKeys(t *testing.T) {
	var out struct {
		Pattern string `yaml:"pattern"`
	}
	require.NoError(t, Decode([]byte("pattern: a\n"), &out, true))
	require.Equal(t, "a", out.Pattern)

	err := Decode([]byte("pattern: a\nmaintainer: b\n"), &out, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "maintainer")

	require.NoError(t, Decode([]byte("pattern: a\nmaintainer: b\n"), &out, false))
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("a: 1\nb: two\n"))
	require.NoError(t, err)
	require.Equal(t, 1, fields["a"])
	require.Equal(t, "two", fields["b"])

	empty, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = ParseYAML([]byte("a: [\n"))
	require.Error(t, err)
}

func TestMarshal_PreservesOrderAndSkipsEmpty(t *testing.T) {
	out, err := Marshal([]Field{
		{Key: "target", Value: "x86_64-unknown-linux-gnu"},
		{Key: "tier", Value: "1"},
		{Key: "source_revision", Value: ""},
		{Key: "maintainers", Value: []string{"@a", "@b"}},
		{Key: "std", Value: true},
	})
	require.NoError(t, err)
	text := string(out)
	require.NotContains(t, text, "source_revision")
	require.Less(t, strings.Index(text, "target:"), strings.Index(text, "tier:"))
	require.Less(t, strings.Index(text, "tier:"), strings.Index(text, "maintainers:"))
	require.Contains(t, text, "tier: \"1\"")
	require.Contains(t, text, "std: true")

	fields, err := ParseYAML(out)
	require.NoError(t, err)
	require.Equal(t, "1", fields["tier"])
	require.Equal(t, []any{"@a", "@b"}, fields["maintainers"])
}

func TestMarshal_Empty(t *testing.T) {
	out, err := Marshal(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}
