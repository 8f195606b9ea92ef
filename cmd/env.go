package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fuelsignal/leadgen-cli/internal/nlp"
	"github.com/fuelsignal/leadgen-cli/internal/notify"
	"github.com/fuelsignal/leadgen-cli/internal/pipeline"
	"github.com/fuelsignal/leadgen-cli/internal/store"
)

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// pipelineEnv holds the initialized store and pipeline shared by commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, runs migrations, and builds the pipeline
// with persisted weights and model loaded. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	p, err := pipeline.New(cfg, st, nlp.NewProse(), notify.NewWebhook(cfg.Notify, st))
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if err := p.Init(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
