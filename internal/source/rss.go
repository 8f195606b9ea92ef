package source

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// RSS fetches items from a set of RSS/Atom feed URLs. Requests are paced by
// a shared rate limiter so a long feed list stays polite to origins.
type RSS struct {
	name       string
	urls       []string
	maxEntries int
	timeout    time.Duration
	limiter    *rate.Limiter
	parser     *gofeed.Parser
}

// NewRSS builds a feed fetcher for one source group (news, tenders, gem).
func NewRSS(name string, urls []string, cfg config.SourcesConfig) *RSS {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 15
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RSS{
		name:       name,
		urls:       urls,
		maxEntries: maxEntries,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		parser:     gofeed.NewParser(),
	}
}

func (r *RSS) Name() string { return r.name }

// Fetch pulls every configured feed URL. Per-URL failures are collected and
// returned together only when no URL succeeded; partial results win.
func (r *RSS) Fetch(ctx context.Context) ([]model.RawItem, error) {
	var items []model.RawItem
	var firstErr error
	succeeded := false

	for _, url := range r.urls {
		if err := r.limiter.Wait(ctx); err != nil {
			return items, eris.Wrap(err, "source: rate limit wait")
		}

		feedCtx, cancel := context.WithTimeout(ctx, r.timeout)
		feed, err := r.parser.ParseURLWithContext(url, feedCtx)
		cancel()
		if err != nil {
			if firstErr == nil {
				firstErr = eris.Wrapf(err, "source: parse feed %s", url)
			}
			continue
		}
		succeeded = true

		for i, entry := range feed.Items {
			if i >= r.maxEntries {
				break
			}
			items = append(items, model.RawItem{
				RawText:   entryText(entry),
				Source:    r.name,
				SourceURL: entry.Link,
			})
		}
	}

	if !succeeded && firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

// entryText joins title and description; the title usually carries the
// company name and the description the detail terms.
func entryText(entry *gofeed.Item) string {
	title := strings.TrimSpace(entry.Title)
	desc := strings.TrimSpace(entry.Description)
	switch {
	case title == "":
		return desc
	case desc == "":
		return title
	default:
		return title + ". " + desc
	}
}
