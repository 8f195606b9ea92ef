// Package source fetches unscored raw items from external feeds. Each feed
// entry becomes one RawItem; entity resolution and scoring happen downstream.
package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// Fetcher supplies raw items from one configured source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]model.RawItem, error)
}

// FetchAll runs every fetcher sequentially and pools the results. A failing
// source is logged and skipped so one dead feed never blocks a discovery run.
func FetchAll(ctx context.Context, fetchers []Fetcher) []model.RawItem {
	var items []model.RawItem
	for _, f := range fetchers {
		batch, err := f.Fetch(ctx)
		if err != nil {
			zap.L().Warn("source fetch failed",
				zap.String("source", f.Name()),
				zap.Error(err))
			continue
		}
		zap.L().Debug("source fetched",
			zap.String("source", f.Name()),
			zap.Int("items", len(batch)))
		items = append(items, batch...)
	}
	return items
}

// Static is a fixed-item fetcher, used for file-fed discovery and tests.
type Static struct {
	SourceName string
	Items      []model.RawItem
}

func (s *Static) Name() string { return s.SourceName }

func (s *Static) Fetch(context.Context) ([]model.RawItem, error) {
	return s.Items, nil
}
