package pattern

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		target  string
		want    bool
	}{
		{"x86_64-unknown-linux-gnu", "x86_64-unknown-linux-gnu", true},
		{"x86_64-unknown-linux-gnu", "x86_64-unknown-linux-musl", false},
		{"*-apple-darwin", "aarch64-apple-darwin", true},
		{"*-apple-darwin", "aarch64-apple-ios", false},
		{"*-linux-*", "armv7-unknown-linux-gnueabihf", true},
		{"*", "wasm32-wasip1", true},
		{"i?86-*", "i686-pc-windows-msvc", true},
		{"i?86-*", "x86_64-pc-windows-msvc", false},
		{"*-unknown-{openbsd,netbsd}", "sparc64-unknown-netbsd", true},
		{"*-unknown-{openbsd,netbsd}", "x86_64-unknown-freebsd", false},
		{"armv[67]*", "armv6k-nintendo-3ds", true},
		{"armv[67]*", "armv5te-unknown-linux-gnueabi", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.target, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.target))
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile("")
	require.Error(t, err)

	_, err = Compile("x86_64-[unknown")
	require.Error(t, err)
}

func mustCompile(t *testing.T, p string) *Matcher {
	t.Helper()
	m, err := Compile(p)
	require.NoError(t, err)
	return m
}

// Character classes and alternations count as one wildcard each.
func TestMeasure(t *testing.T) {
	m := mustCompile(t, "*-apple-darwin")
	assert.Equal(t, 13, m.literals)
	assert.Equal(t, 1, m.wildcards)

	m = mustCompile(t, "armv[67]*-{a,b}")
	assert.Equal(t, 5, m.literals)
	assert.Equal(t, 3, m.wildcards)
}

func TestLess_MostSpecificFirst(t *testing.T) {
	ms := []*Matcher{
		mustCompile(t, "*"),
		mustCompile(t, "*-apple-*"),
		mustCompile(t, "aarch64-apple-darwin"),
		mustCompile(t, "*-apple-darwin"),
	}
	sort.SliceStable(ms, func(i, j int) bool { return Less(ms[i], ms[j]) })

	got := make([]string, 0, len(ms))
	for _, m := range ms {
		got = append(got, m.String())
	}
	assert.Equal(t, []string{"aarch64-apple-darwin", "*-apple-darwin", "*-apple-*", "*"}, got)
}

func TestLess_TieBreaksLexically(t *testing.T) {
	a := mustCompile(t, "*-linux-gnu")
	b := mustCompile(t, "*-linux-gnx")
	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))
}

func TestFilenameEscaping(t *testing.T) {
	pattern := "*-unknown-{openbsd,netbsd}"
	stem := EscapeFilename(pattern)
	assert.Equal(t, "%2A-unknown-%7Bopenbsd%2Cnetbsd%7D", stem)
	assert.Equal(t, pattern, UnescapeFilename(stem))

	assert.True(t, FilenameMatches(stem, pattern))
	assert.True(t, FilenameMatches(pattern, pattern))
	assert.True(t, FilenameMatches("%2a-apple-darwin", "*-apple-darwin"))
	assert.False(t, FilenameMatches("apple-darwin", "*-apple-darwin"))
}

func TestFilter(t *testing.T) {
	targets := []string{"aarch64-apple-darwin", "x86_64-unknown-linux-gnu", "wasm32-wasip1"}

	all, err := NewFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, targets, all.Apply(targets))

	f, err := NewFilter([]string{"*-linux-*", "wasm*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x86_64-unknown-linux-gnu", "wasm32-wasip1"}, f.Apply(targets))

	_, err = NewFilter([]string{"[bad"})
	require.Error(t, err)
}
