package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/targetdocs/internal/assemble"
	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/logfields"
	"git.home.luguber.info/inful/targetdocs/internal/render"
	"git.home.luguber.info/inful/targetdocs/internal/targets"
)

type writer struct {
	req     Request
	res     *Result
	history History
	log     *slog.Logger
}

// pages renders every page and writes those whose fingerprint changed.
// Files in the output directory that this tool did not generate are never
// overwritten.
func (w *writer) pages(ctx context.Context, pages []*assemble.Page) error {
	var conflicts []error
	for _, p := range pages {
		name := p.Target.Name
		content, err := render.Page(p, render.Meta{Revision: w.res.Revision})
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryRender, "failed to render page").
				WithContext("target", name).
				Build()
		}
		fp := render.Inspect(content).Fingerprint
		path, err := w.pagePath(name)
		if err != nil {
			return err
		}

		existing, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read page").
				WithContext("path", path).
				Build()
		default:
			info := render.Inspect(existing)
			if !info.Generated {
				conflicts = append(conflicts, fmt.Errorf("%s: exists and was not generated by targetdocs", path))
				continue
			}
			if info.Fingerprint == fp {
				w.res.Unchanged = append(w.res.Unchanged, name)
				if err := w.remember(ctx, name, fp); err != nil {
					return err
				}
				continue
			}
		}

		if w.req.Check {
			w.res.Stale = append(w.res.Stale, name)
			continue
		}
		if err := writeFile(path, content); err != nil {
			return err
		}
		w.res.Written = append(w.res.Written, name)
		w.log.Debug("Wrote page", logfields.Target(name), logfields.Path(path))
		if err := w.remember(ctx, name, fp); err != nil {
			return err
		}
	}
	if len(conflicts) > 0 {
		return ferrors.WrapError(errors.Join(conflicts...), ferrors.CategoryValidation, "refusing to overwrite hand-written pages").
			WithContext("dir", w.req.OutputDir).
			UserAction().
			Build()
	}
	return nil
}

// pagePath returns the page file of target, which must stay inside the
// output directory.
func (w *writer) pagePath(target string) (string, error) {
	dir := filepath.Clean(w.req.OutputDir)
	path := filepath.Join(dir, render.FileName(target))
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel != filepath.Base(rel) || strings.HasPrefix(rel, "..") {
		return "", ferrors.NewError(ferrors.CategoryValidation, "page path leaves the output directory").
			WithContext("target", target).
			WithContext("dir", w.req.OutputDir).
			UserAction().
			Build()
	}
	return path, nil
}

// remember records fp as the page fingerprint of target unless the store
// already holds it. Pages written before the store existed are backfilled.
func (w *writer) remember(ctx context.Context, target, fp string) error {
	if w.history == nil || w.req.Check {
		return nil
	}
	stored, ok, err := w.history.PageFingerprint(ctx, target)
	if err == nil && ok && stored == fp {
		return nil
	}
	if err == nil {
		err = w.history.PutPageFingerprint(ctx, w.res.RunID, target, fp)
	}
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryState, "failed to record page fingerprint").
			WithContext("target", target).
			Build()
	}
	return nil
}

// prune removes generated pages of targets that no longer exist. Pages of
// targets outside the include filter are kept.
func (w *writer) prune(ctx context.Context, ts []targets.Target) error {
	entries, err := os.ReadDir(w.req.OutputDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read output directory").
			WithContext("dir", w.req.OutputDir).
			Build()
	}

	current := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		current[t.Name] = struct{}{}
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(w.req.OutputDir, e.Name())
		// #nosec G304 -- path is inside the configured output directory.
		content, err := os.ReadFile(path)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read page").
				WithContext("path", path).
				Build()
		}
		info := render.Inspect(content)
		if !info.Generated || info.Target == "" {
			continue
		}
		if _, ok := current[info.Target]; ok {
			continue
		}
		if !w.req.Filter.Allows(info.Target) {
			continue
		}
		if w.req.Check {
			w.res.Stale = append(w.res.Stale, info.Target)
			continue
		}
		if err := os.Remove(path); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to remove stale page").
				WithContext("path", path).
				Build()
		}
		w.res.Removed = append(w.res.Removed, info.Target)
		w.log.Info("Removed stale page", logfields.Target(info.Target), logfields.Path(path))
		if w.history != nil {
			if err := w.history.DeletePage(ctx, info.Target); err != nil {
				w.log.Warn("Failed to forget removed page", logfields.Target(info.Target), logfields.Error(err))
			}
		}
	}
	return nil
}

// splices updates the marker regions of the platform support and summary
// documents.
func (w *writer) splices(pages []*assemble.Page) error {
	docs := []struct {
		path      string
		generated func() string
	}{
		{w.req.PlatformSupportFile, func() string { return render.Table(pages, w.req.LinkPrefix) }},
		{w.req.SummaryFile, func() string { return render.Summary(pages, w.req.LinkPrefix) }},
	}
	for _, d := range docs {
		if d.path == "" {
			continue
		}
		if err := w.splice(d.path, d.generated()); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) splice(path, generated string) error {
	// #nosec G304 -- path comes from configuration.
	doc, err := os.ReadFile(path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read document").
			WithContext("path", path).
			Build()
	}
	out, err := render.Splice(string(doc), generated)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "cannot update document").
			WithContext("path", path).
			WithContext("hint", fmt.Sprintf("add %s and %s lines", render.MarkerStart, render.MarkerEnd)).
			UserAction().
			Build()
	}
	if out == string(doc) {
		return nil
	}
	if w.req.Check {
		w.res.Stale = append(w.res.Stale, path)
		return nil
	}
	if err := writeFile(path, []byte(out)); err != nil {
		return err
	}
	w.log.Info("Updated document", logfields.Path(path))
	return nil
}

// writeFile replaces path through a temporary file and a rename.
func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create directory").
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write file").
			WithContext("path", tmp).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to replace file").
			WithContext("path", path).
			Build()
	}
	return nil
}
