package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/technode/hiring-cli/internal/config"
	"github.com/technode/hiring-cli/internal/pipeline"
	"github.com/technode/hiring-cli/internal/store"
	anthropicpkg "github.com/technode/hiring-cli/pkg/anthropic"
	"github.com/technode/hiring-cli/pkg/hn"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "runs.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// pipelineEnv bundles the wired pipeline with its closeable resources.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Store    store.Store
}

func (e *pipelineEnv) Close() {
	_ = e.Store.Close()
}

func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic key is required (HIRING_ANTHROPIC_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	rules, err := config.LoadRules(cfg.Rules.Path)
	if err != nil {
		st.Close()
		return nil, err
	}

	hnOpts := []hn.Option{
		hn.WithAlgoliaBaseURL(cfg.HN.AlgoliaBaseURL),
		hn.WithFirebaseBaseURL(cfg.HN.FirebaseBaseURL),
		hn.WithConcurrency(cfg.HN.FetchConcurrency),
		hn.WithSearchWindow(time.Duration(cfg.HN.SearchWindowDays) * 24 * time.Hour),
	}
	if cfg.HN.TimeoutSecs > 0 {
		hnOpts = append(hnOpts, hn.WithTimeout(time.Duration(cfg.HN.TimeoutSecs)*time.Second))
	}
	hnClient := hn.NewClient(hnOpts...)
	backend := anthropicpkg.NewClient(cfg.Anthropic.Key)

	return &pipelineEnv{
		Pipeline: pipeline.New(cfg, rules, hnClient, backend, st),
		Store:    st,
	}, nil
}
