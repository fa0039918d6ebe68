package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/targetdocs/internal/config"
	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show" default:"20"`
}

func (h *HistoryCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{})
	if err != nil {
		return err
	}
	if cfg.State.Path == "" {
		return ferrors.ConfigError("run history is disabled").
			WithContext("hint", "set state.path in the configuration").
			Build()
	}
	store, err := openStore(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.RecentRuns(context.Background(), h.Limit)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryState, "failed to read run history").Build()
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(global.Out, "No runs recorded")
		return nil
	}
	for _, r := range runs {
		rev := r.Revision
		if rev == "" {
			rev = "-"
		}
		_, _ = fmt.Fprintf(global.Out, "%s  %s  %-9s  rev %s  targets %d  written %d  removed %d  %s\n",
			r.StartedAt.Format(time.RFC3339), r.ID[:min(8, len(r.ID))], r.Status, rev,
			r.Targets, r.Written, r.Removed, r.Duration().Round(time.Millisecond))
		if r.Error != "" {
			_, _ = fmt.Fprintf(global.Out, "    %s\n", r.Error)
		}
	}
	return nil
}
