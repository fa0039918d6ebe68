package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

const (
	red  color = "red"
	blue color = "blue"
)

func newColors() *EnumNormalizer[color] {
	return NewEnumNormalizer("color", map[string]color{"red": red, "Blue": blue})
}

func TestEnumNormalizer_Normalize(t *testing.T) {
	n := newColors()
	tests := []struct {
		name  string
		input string
		want  color
	}{
		{"exact", "red", red},
		{"folded key", "blue", blue},
		{"case and spaces", "  BLUE ", blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnumNormalizer_Unknown(t *testing.T) {
	_, err := newColors().Normalize("green")
	require.Error(t, err)
	assert.Equal(t, `invalid color "green", valid options: blue, red`, err.Error())
}
