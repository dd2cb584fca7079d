// Package pipeline orchestrates one end-to-end collection run: locate the
// hiring thread, fetch and filter its comments, extract job records, and
// merge them into the persisted table.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/technode/hiring-cli/internal/config"
	"github.com/technode/hiring-cli/internal/dataset"
	"github.com/technode/hiring-cli/internal/extract"
	"github.com/technode/hiring-cli/internal/filter"
	"github.com/technode/hiring-cli/internal/model"
	"github.com/technode/hiring-cli/internal/store"
	"github.com/technode/hiring-cli/pkg/anthropic"
	"github.com/technode/hiring-cli/pkg/hn"
)

// RunOptions tune a single invocation.
type RunOptions struct {
	// SnapshotPath replays a previously captured raw snapshot instead of
	// hitting the live APIs.
	SnapshotPath string
	// Fresh clears the persisted table before merging, turning the run
	// into a full overwrite.
	Fresh bool
}

// Pipeline wires the collection stages together. All stage state is
// per-run; the pipeline itself is reusable across runs.
type Pipeline struct {
	cfg     *config.Config
	rules   *config.Rules
	hn      hn.Client
	backend anthropic.Client
	store   store.Store
	junk    *filter.Filter
}

// New builds a Pipeline from already-constructed dependencies.
func New(cfg *config.Config, rules *config.Rules, hnClient hn.Client, backend anthropic.Client, st store.Store) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		rules:   rules,
		hn:      hnClient,
		backend: backend,
		store:   st,
		junk:    filter.New(rules.JunkKeywords),
	}
}

// snapshot is the raw capture written to disk before extraction starts, so
// a run can be replayed without refetching.
type snapshot struct {
	Thread   snapshotThread     `json:"thread"`
	Comments []model.RawComment `json:"comments"`
}

type snapshotThread struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Run executes one collection pass and records it in the run store. The
// returned summary is also persisted with the run. Budget exhaustion is a
// successful partial run, not an error.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*model.RunSummary, error) {
	run, err := p.store.CreateRun(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	summary, runErr := p.execute(ctx, opts)
	if runErr != nil {
		if failErr := p.store.FailRun(ctx, run.ID, runErr); failErr != nil {
			zap.L().Error("pipeline: record failed run", zap.Error(failErr))
		}
		return nil, runErr
	}

	if err := p.store.CompleteRun(ctx, run.ID, summary); err != nil {
		return summary, eris.Wrap(err, "pipeline: record completed run")
	}
	return summary, nil
}

func (p *Pipeline) execute(ctx context.Context, opts RunOptions) (*model.RunSummary, error) {
	started := time.Now()
	summary := &model.RunSummary{}

	snap, err := p.acquire(ctx, opts)
	if err != nil {
		return nil, err
	}
	summary.ThreadID = snap.Thread.ID
	summary.ThreadTitle = snap.Thread.Title
	summary.Fetched = len(snap.Comments)

	if opts.SnapshotPath == "" {
		path, err := p.writeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		summary.SnapshotPath = path
	} else {
		summary.SnapshotPath = opts.SnapshotPath
	}

	// The table is loaded and flushed up front so an unwritable dataset
	// fails the run before any extraction cost is paid.
	table, err := dataset.Load(p.cfg.Dataset.Path)
	if err != nil {
		return nil, err
	}
	if opts.Fresh {
		table.Clear()
	}
	if err := table.Flush(); err != nil {
		return nil, err
	}

	budget := extract.NewTokenBudget(p.cfg.Extract.DailyTokenBudget)
	engine := extract.NewEngine(p.backend, p.cfg.Extract, p.cfg.Anthropic, p.rules, budget)

	flushEvery := p.cfg.Dataset.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 10
	}

	pendingFlush := 0
	for _, comment := range snap.Comments {
		if p.junk.IsJunk(comment.Text) {
			summary.FilteredOut++
			continue
		}

		rec, err := engine.ExtractOne(ctx, comment)
		if errors.Is(err, extract.ErrBudgetExhausted) {
			zap.L().Warn("pipeline: token budget exhausted, stopping early",
				zap.Int("extracted", summary.Extracted),
			)
			summary.BudgetExhausted = true
			break
		}
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, model.ItemFailure{
				CommentID: fmt.Sprintf("%d", comment.ID),
				Reason:    err.Error(),
			})
			zap.L().Warn("pipeline: extraction failed, skipping item",
				zap.Int64("comment_id", comment.ID),
				zap.Error(err),
			)
			continue
		}

		summary.Extracted++
		summary.Persisted += table.Merge(*rec)

		pendingFlush++
		if pendingFlush >= flushEvery {
			if err := table.Flush(); err != nil {
				return nil, err
			}
			pendingFlush = 0
		}
	}

	if err := table.Flush(); err != nil {
		return nil, err
	}

	summary.TokenUsage = engine.Usage()
	summary.DurationMS = time.Since(started).Milliseconds()

	zap.L().Info("pipeline: run complete",
		zap.Int64("thread_id", summary.ThreadID),
		zap.Int("fetched", summary.Fetched),
		zap.Int("filtered_out", summary.FilteredOut),
		zap.Int("extracted", summary.Extracted),
		zap.Int("failed", summary.Failed),
		zap.Int("persisted", summary.Persisted),
		zap.Bool("budget_exhausted", summary.BudgetExhausted),
		zap.Int("total_tokens", summary.TokenUsage.Total()),
	)

	return summary, nil
}

// acquire produces the raw snapshot for this run, either replayed from disk
// or fetched live.
func (p *Pipeline) acquire(ctx context.Context, opts RunOptions) (*snapshot, error) {
	if opts.SnapshotPath != "" {
		return readSnapshot(opts.SnapshotPath)
	}

	thread, err := p.hn.LocateLatestThread(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: locate thread")
	}
	zap.L().Info("pipeline: located hiring thread",
		zap.Int64("thread_id", thread.ID),
		zap.String("title", thread.Title),
	)

	comments, err := p.hn.FetchChildren(ctx, thread.ID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch children")
	}

	snap := &snapshot{
		Thread: snapshotThread{
			ID:        thread.ID,
			Title:     thread.Title,
			CreatedAt: thread.CreatedAt,
		},
		Comments: make([]model.RawComment, len(comments)),
	}
	for i, c := range comments {
		snap.Comments[i] = model.RawComment{
			ID:             c.ID,
			ParentThreadID: c.ParentID,
			Author:         c.Author,
			CreatedAt:      c.CreatedAt,
			Text:           c.Text,
		}
	}
	return snap, nil
}

func (p *Pipeline) writeSnapshot(snap *snapshot) (string, error) {
	dir := p.cfg.Dataset.SnapshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "pipeline: mkdir %s", dir)
	}

	name := fmt.Sprintf("thread-%d-%s.json", snap.Thread.ID, time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "pipeline: marshal snapshot")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "pipeline: write snapshot %s", path)
	}

	zap.L().Info("pipeline: wrote raw snapshot",
		zap.String("path", path),
		zap.Int("comments", len(snap.Comments)),
	)
	return path, nil
}

func readSnapshot(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read snapshot %s", path)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse snapshot %s", path)
	}
	return &snap, nil
}
