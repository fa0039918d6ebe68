// Package normalization maps loosely written configuration strings onto
// typed enumerations.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// EnumNormalizer maps case-insensitive, space-trimmed strings to values of T.
type EnumNormalizer[T comparable] struct {
	name   string
	values map[string]T
	keys   []string
}

// NewEnumNormalizer builds a normalizer for the enumeration called name.
// Keys of values are folded the same way input is.
func NewEnumNormalizer[T comparable](name string, values map[string]T) *EnumNormalizer[T] {
	n := &EnumNormalizer[T]{name: name, values: make(map[string]T, len(values))}
	for k, v := range values {
		key := fold(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the value for raw or an error naming the valid options.
func (n *EnumNormalizer[T]) Normalize(raw string) (T, error) {
	if v, ok := n.values[fold(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.keys, ", "))
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
