package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technode/hiring-cli/internal/config"
	"github.com/technode/hiring-cli/internal/dataset"
	"github.com/technode/hiring-cli/internal/model"
	"github.com/technode/hiring-cli/internal/store"
	"github.com/technode/hiring-cli/pkg/anthropic"
	"github.com/technode/hiring-cli/pkg/hn"
)

// fakeHN serves a fixed thread and comment set.
type fakeHN struct {
	thread   hn.Thread
	comments []hn.Comment
}

func (f *fakeHN) LocateLatestThread(ctx context.Context) (*hn.Thread, error) {
	t := f.thread
	return &t, nil
}

func (f *fakeHN) FetchChildren(ctx context.Context, threadID int64) ([]hn.Comment, error) {
	return f.comments, nil
}

// fakeBackend extracts the company name it finds in the text, tracking calls.
type fakeBackend struct {
	calls     int
	perCallIn int64
}

func (f *fakeBackend) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	text := fmt.Sprintf(`{"company":"Company %d","job_role":"Backend","remote_type":"UNSPECIFIED"}`, f.calls)
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: f.perCallIn, OutputTokens: 10},
	}, nil
}

func posting(id int64) hn.Comment {
	return hn.Comment{
		ID:        id,
		ParentID:  45000001,
		Author:    "poster",
		CreatedAt: time.Now().UTC(),
		Text:      fmt.Sprintf("Company %d is hiring a senior engineer, remote friendly, apply on our site.", id),
	}
}

func testConfig(t *testing.T, budget int) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Extract: config.ExtractConfig{
			MaxChars:         3500,
			PaceSecs:         0,
			DailyTokenBudget: budget,
			TimeoutSecs:      5,
		},
		Anthropic: config.AnthropicConfig{Model: "test-model", MaxTokens: 256},
		Dataset: config.DatasetConfig{
			Path:        filepath.Join(dir, "processed", "jobs.csv"),
			SnapshotDir: filepath.Join(dir, "raw"),
			FlushEvery:  2,
		},
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newTestPipeline(t *testing.T, cfg *config.Config, backend anthropic.Client, comments []hn.Comment) (*Pipeline, store.Store) {
	t.Helper()
	st := newTestStore(t)
	hnClient := &fakeHN{
		thread:   hn.Thread{ID: 45000001, Title: "Ask HN: Who is hiring? (February 2026)"},
		comments: comments,
	}
	return New(cfg, config.DefaultRules(), hnClient, backend, st), st
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t, 0)
	comments := []hn.Comment{
		posting(1),
		{ID: 2, ParentID: 45000001, Author: "meta", Text: "too short"},
		posting(3),
	}
	p, st := newTestPipeline(t, cfg, &fakeBackend{}, comments)

	summary, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(45000001), summary.ThreadID)
	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 1, summary.FilteredOut)
	assert.Equal(t, 2, summary.Extracted)
	assert.Equal(t, 2, summary.Persisted)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, summary.BudgetExhausted)
	assert.NotEmpty(t, summary.SnapshotPath)

	table, err := dataset.Load(cfg.Dataset.Path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	runs, err := st.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	require.NotNil(t, runs[0].Summary)
	assert.Equal(t, 2, runs[0].Summary.Persisted)
}

func TestRun_TwiceKeepsIDSetStable(t *testing.T) {
	cfg := testConfig(t, 0)
	comments := []hn.Comment{posting(1), posting(2)}
	p, _ := newTestPipeline(t, cfg, &fakeBackend{}, comments)

	_, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	summary, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	// Second pass re-extracts but adds no new rows.
	assert.Equal(t, 2, summary.Extracted)
	assert.Equal(t, 0, summary.Persisted)

	table, err := dataset.Load(cfg.Dataset.Path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestRun_BudgetStopIsSuccess(t *testing.T) {
	// Each extraction costs 110 tokens; the ceiling allows only one.
	cfg := testConfig(t, 100)
	comments := []hn.Comment{posting(1), posting(2), posting(3)}
	p, st := newTestPipeline(t, cfg, &fakeBackend{perCallIn: 100}, comments)

	summary, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.True(t, summary.BudgetExhausted)
	assert.Equal(t, 1, summary.Extracted)
	assert.Equal(t, 1, summary.Persisted)

	// Partial results are on disk and the run is recorded as complete.
	table, err := dataset.Load(cfg.Dataset.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	runs, err := st.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
}

func TestRun_FreshClearsExistingRows(t *testing.T) {
	cfg := testConfig(t, 0)

	stale, err := dataset.Load(cfg.Dataset.Path)
	require.NoError(t, err)
	stale.Merge(model.JobRecord{CommentID: "999", Company: "Stale Corp"})
	require.NoError(t, stale.Flush())

	p, _ := newTestPipeline(t, cfg, &fakeBackend{}, []hn.Comment{posting(1)})
	_, err = p.Run(context.Background(), RunOptions{Fresh: true})
	require.NoError(t, err)

	table, err := dataset.Load(cfg.Dataset.Path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "1", table.Records()[0].CommentID)
}

func TestRun_ReplayFromSnapshot(t *testing.T) {
	cfg := testConfig(t, 0)
	p, _ := newTestPipeline(t, cfg, &fakeBackend{}, []hn.Comment{posting(1), posting(2)})

	first, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, first.SnapshotPath)

	// Replaying must not depend on the live client and must dedupe.
	replay, err := p.Run(context.Background(), RunOptions{SnapshotPath: first.SnapshotPath})
	require.NoError(t, err)
	assert.Equal(t, first.ThreadID, replay.ThreadID)
	assert.Equal(t, 2, replay.Fetched)
	assert.Equal(t, 0, replay.Persisted)
	assert.Equal(t, first.SnapshotPath, replay.SnapshotPath)
}
