package pattern

// Filter selects target names matching any of its patterns. An empty Filter
// selects everything.
type Filter struct {
	matchers []*Matcher
}

// NewFilter compiles patterns into a Filter.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		m, err := Compile(p)
		if err != nil {
			return nil, err
		}
		f.matchers = append(f.matchers, m)
	}
	return f, nil
}

// Allows reports whether target passes the filter.
func (f *Filter) Allows(target string) bool {
	if f == nil || len(f.matchers) == 0 {
		return true
	}
	for _, m := range f.matchers {
		if m.Match(target) {
			return true
		}
	}
	return false
}

// Apply returns the targets that pass the filter, preserving order.
func (f *Filter) Apply(targets []string) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if f.Allows(t) {
			out = append(out, t)
		}
	}
	return out
}
