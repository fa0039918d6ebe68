// Package generate runs the target documentation pipeline: load info files,
// query targets, validate, assemble, render, then write or check.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/targetdocs/internal/assemble"
	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/infofile"
	"git.home.luguber.info/inful/targetdocs/internal/logfields"
	"git.home.luguber.info/inful/targetdocs/internal/metrics"
	"git.home.luguber.info/inful/targetdocs/internal/notify"
	"git.home.luguber.info/inful/targetdocs/internal/pattern"
	"git.home.luguber.info/inful/targetdocs/internal/revision"
	"git.home.luguber.info/inful/targetdocs/internal/state"
	"git.home.luguber.info/inful/targetdocs/internal/targets"
)

// Request describes one run.
type Request struct {
	InfoDir   string
	OutputDir string
	// PlatformSupportFile and SummaryFile are optional documents with a
	// marker-delimited generated region.
	PlatformSupportFile string
	SummaryFile         string
	LinkPrefix          string
	StubText            string
	Strict              bool
	// Check reports what would change without writing anything.
	Check  bool
	Source targets.Source
	// Filter is the include filter the source was built with. Generated pages
	// for targets it excludes are left alone rather than pruned.
	Filter *pattern.Filter
	// Revision overrides the git revision lookup of InfoDir.
	Revision string
}

// Result reports what a run did.
type Result struct {
	RunID     string
	Revision  string
	Targets   int
	Written   []string
	Unchanged []string
	Removed   []string
	// Stale lists, in check mode, the pages and documents that are out of date.
	Stale    []string
	Warnings []infofile.Problem
	Stubbed  int
	Duration time.Duration
}

// History is the part of the state store a run records into.
type History interface {
	BeginRun(ctx context.Context, id, revision string) error
	FinishRun(ctx context.Context, run state.RunSummary) error
	PageFingerprint(ctx context.Context, target string) (string, bool, error)
	PutPageFingerprint(ctx context.Context, runID, target, fingerprint string) error
	DeletePage(ctx context.Context, target string) error
}

// Generator runs requests. The zero value works: it records nothing.
type Generator struct {
	History  History
	Recorder metrics.Recorder
	Notifier notify.Notifier
}

// New returns a Generator with no-op metrics and notifications.
func New() *Generator {
	return &Generator{Recorder: metrics.NoopRecorder{}, Notifier: notify.NoopNotifier{}}
}

func (g *Generator) recorder() metrics.Recorder {
	if g.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return g.Recorder
}

// Run executes req.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Revision: req.Revision}
	if res.Revision == "" {
		rev, err := revision.Resolve(req.InfoDir)
		if err != nil {
			slog.Warn("Failed to resolve info directory revision", logfields.Error(err))
		}
		res.Revision = rev
	}
	log := slog.With(logfields.RunID(res.RunID))

	if g.History != nil {
		if err := g.History.BeginRun(ctx, res.RunID, res.Revision); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryState, "failed to record run start").Build()
		}
	}
	log.Info("Run started", logfields.Revision(res.Revision), "check", req.Check)

	err := g.run(ctx, req, res, log)
	res.Duration = time.Since(start)
	g.finish(ctx, req, res, err, log)
	if err != nil {
		return res, err
	}
	return res, nil
}

func (g *Generator) run(ctx context.Context, req Request, res *Result, log *slog.Logger) error {
	rec := g.recorder()

	stage := time.Now()
	set, err := infofile.LoadDir(req.InfoDir)
	if err != nil {
		return err
	}
	g.stageDone(log, "load", stage, logfields.Count(len(set.Files)))

	stage = time.Now()
	if req.Source == nil {
		return ferrors.InternalError("no target source configured").Build()
	}
	ts, err := req.Source.Targets(ctx)
	if err != nil {
		return err
	}
	// Info files are checked against every target, not only the included ones.
	known, err := targets.AllNames(ctx, req.Source, ts)
	if err != nil {
		return err
	}
	g.stageDone(log, "targets", stage)
	res.Targets = len(ts)
	rec.SetTargets(len(ts))

	report := set.Validate(known)
	res.Warnings = report.Warnings()
	for _, w := range res.Warnings {
		attrs := []any{logfields.InfoFile(w.File), "problem", w.Message}
		if w.Target != "" {
			attrs = append(attrs, logfields.Target(w.Target))
		}
		if w.Section != "" {
			attrs = append(attrs, logfields.Section(w.Section))
		}
		log.Warn("Target info problem", attrs...)
	}
	if err := report.Err(req.Strict); err != nil {
		return err
	}

	stage = time.Now()
	pages := assemble.AssembleAll(ts, set, assemble.Options{StubText: req.StubText})
	for _, p := range pages {
		res.Stubbed += len(p.Stubbed())
	}
	rec.SetStubbedSections(res.Stubbed)
	g.stageDone(log, "assemble", stage, "stubbed", res.Stubbed)

	stage = time.Now()
	w := &writer{req: req, res: res, history: g.History, log: log}
	if err := w.pages(ctx, pages); err != nil {
		return err
	}
	if err := w.prune(ctx, ts); err != nil {
		return err
	}
	if err := w.splices(pages); err != nil {
		return err
	}
	g.stageDone(log, "write", stage)

	if req.Check && len(res.Stale) > 0 {
		return staleError(res.Stale)
	}
	return nil
}

// stageDone records the duration of a pipeline stage started at start.
func (g *Generator) stageDone(log *slog.Logger, name string, start time.Time, attrs ...any) {
	d := time.Since(start)
	g.recorder().ObserveStageDuration(name, d)
	log.Debug("Stage finished", append([]any{logfields.Stage(name), logfields.DurationMS(float64(d.Milliseconds()))}, attrs...)...)
}

func staleError(stale []string) error {
	sorted := append([]string(nil), stale...)
	sort.Strings(sorted)
	lines := make([]error, 0, len(sorted))
	for _, s := range sorted {
		lines = append(lines, errors.New(s))
	}
	return ferrors.WrapError(errors.Join(lines...), ferrors.CategoryValidation, "generated documentation is out of date").
		WithContext("stale", len(sorted)).
		WithContext("hint", "run 'targetdocs generate'").
		UserAction().
		Build()
}

func (g *Generator) finish(ctx context.Context, req Request, res *Result, runErr error, log *slog.Logger) {
	rec := g.recorder()
	status := state.RunStatusCompleted
	outcome := metrics.OutcomeSuccess
	switch {
	case runErr != nil && req.Check && len(res.Stale) > 0:
		status, outcome = state.RunStatusStale, metrics.OutcomeStale
	case runErr != nil:
		status, outcome = state.RunStatusFailed, metrics.OutcomeFailed
	}

	rec.ObserveRunDuration(res.Duration)
	rec.IncRunOutcome(outcome)
	rec.IncPages(metrics.PageWritten, len(res.Written))
	rec.IncPages(metrics.PageUnchanged, len(res.Unchanged))
	rec.IncPages(metrics.PageRemoved, len(res.Removed))
	rec.IncPages(metrics.PageStale, len(res.Stale))

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	if g.History != nil {
		summary := state.RunSummary{
			ID:        res.RunID,
			Revision:  res.Revision,
			Status:    status,
			EndedAt:   time.Now(),
			Targets:   res.Targets,
			Written:   len(res.Written),
			Unchanged: len(res.Unchanged),
			Removed:   len(res.Removed),
			Warnings:  len(res.Warnings),
			Error:     firstLine(errMsg),
		}
		if err := g.History.FinishRun(ctx, summary); err != nil {
			log.Warn("Failed to record run outcome", logfields.Error(err))
		}
	}

	if g.Notifier != nil {
		event := notify.RunEvent{
			RunID:      res.RunID,
			Revision:   res.Revision,
			Status:     string(status),
			Check:      req.Check,
			Targets:    res.Targets,
			Written:    res.Written,
			Removed:    res.Removed,
			Stale:      res.Stale,
			Warnings:   len(res.Warnings),
			Error:      firstLine(errMsg),
			DurationMS: res.Duration.Milliseconds(),
		}
		if err := g.Notifier.Notify(ctx, event); err != nil {
			nerr := ferrors.WrapError(err, ferrors.CategoryNotify, "failed to publish run event").Warning().Build()
			log.Warn(nerr.Error(), logfields.Error(err))
		}
	}

	attrs := []any{
		"status", string(status),
		logfields.Count(res.Targets),
		"written", len(res.Written),
		"unchanged", len(res.Unchanged),
		"removed", len(res.Removed),
		"stale", len(res.Stale),
		logfields.DurationMS(float64(res.Duration.Milliseconds())),
	}
	if runErr != nil {
		log.Error("Run failed", append(attrs, logfields.Error(runErr))...)
		return
	}
	log.Info("Run finished", attrs...)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// String summarizes the result for terminal output.
func (r *Result) String() string {
	return fmt.Sprintf("%d targets: %d written, %d unchanged, %d removed, %d stale, %d warnings",
		r.Targets, len(r.Written), len(r.Unchanged), len(r.Removed), len(r.Stale), len(r.Warnings))
}
