package infofile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
)

// Severity of a validation problem.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is one finding of Validate.
type Problem struct {
	Severity Severity
	File     string
	Target   string
	Section  string
	Message  string
}

func (p Problem) String() string {
	if p.Target != "" {
		return fmt.Sprintf("%s: %s (target %s)", p.File, p.Message, p.Target)
	}
	return fmt.Sprintf("%s: %s", p.File, p.Message)
}

// Report collects validation problems.
type Report struct {
	Problems []Problem
}

// Errors returns the problems of error severity.
func (r Report) Errors() []Problem { return r.filter(SeverityError) }

// Warnings returns the problems of warning severity.
func (r Report) Warnings() []Problem { return r.filter(SeverityWarning) }

func (r Report) filter(sev Severity) []Problem {
	var out []Problem
	for _, p := range r.Problems {
		if p.Severity == sev {
			out = append(out, p)
		}
	}
	return out
}

// Err returns a classified validation error when the report has errors, or
// any problem at all in strict mode.
func (r Report) Err(strict bool) error {
	failing := r.Errors()
	if strict {
		failing = r.Problems
	}
	if len(failing) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failing))
	for _, p := range failing {
		errs = append(errs, errors.New(p.String()))
	}
	return ferrors.WrapError(errors.Join(errs...), ferrors.CategoryValidation, "target info validation failed").
		WithContext("problems", len(failing)).
		UserAction().
		Build()
}

// Validate checks the set against every known target, including targets an
// include filter leaves out of the run:
//   - footnotes must name targets the file's pattern matches (error);
//   - footnotes for targets that do not exist are reported (warning);
//   - patterns matching no target are reported (warning);
//   - a heading with no content is reported (warning); it provides nothing;
//   - a section provided by two matching files is shadowed (warning).
func (s *Set) Validate(targets []string) Report {
	var r Report
	known := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		known[t] = struct{}{}
	}

	for _, f := range s.Files {
		notes := make([]string, 0, len(f.Footnotes))
		for t := range f.Footnotes {
			notes = append(notes, t)
		}
		sort.Strings(notes)
		for _, t := range notes {
			if !f.Matches(t) {
				r.Problems = append(r.Problems, Problem{
					Severity: SeverityError, File: f.Name, Target: t,
					Message: fmt.Sprintf("footnote target is not matched by pattern %q", f.Pattern),
				})
				continue
			}
			if _, ok := known[t]; !ok {
				r.Problems = append(r.Problems, Problem{
					Severity: SeverityWarning, File: f.Name, Target: t,
					Message: "footnote for unknown target",
				})
			}
		}

		for _, sec := range f.Sections {
			if strings.TrimSpace(sec.Content) == "" {
				r.Problems = append(r.Problems, Problem{
					Severity: SeverityWarning, File: f.Name, Section: sec.Name,
					Message: fmt.Sprintf("section %q is empty", sec.Name),
				})
			}
		}

		matched := false
		for _, t := range targets {
			if f.Matches(t) {
				matched = true
				break
			}
		}
		if !matched {
			r.Problems = append(r.Problems, Problem{
				Severity: SeverityWarning, File: f.Name,
				Message: fmt.Sprintf("pattern %q matches no known target", f.Pattern),
			})
		}
	}

	type shadow struct{ winner, loser, section string }
	reported := map[shadow]struct{}{}
	for _, t := range targets {
		provider := map[string]string{}
		for _, f := range s.Matching(t) {
			for _, sec := range f.Sections {
				if strings.TrimSpace(sec.Content) == "" {
					continue
				}
				winner, taken := provider[sec.Name]
				if !taken {
					provider[sec.Name] = f.Name
					continue
				}
				key := shadow{winner: winner, loser: f.Name, section: sec.Name}
				if _, seen := reported[key]; seen {
					continue
				}
				reported[key] = struct{}{}
				r.Problems = append(r.Problems, Problem{
					Severity: SeverityWarning, File: f.Name, Target: t, Section: sec.Name,
					Message: fmt.Sprintf("section %q is shadowed by %s", sec.Name, winner),
				})
			}
		}
	}
	return r
}
