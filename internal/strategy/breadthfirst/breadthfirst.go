// Package breadthfirst is a reference strategy: it scores every newly
// seen link 1.0 and schedules it for fetch, marks crawled pages, and
// finishes once a configured page budget is reached. Grounded on the
// teacher's internal/engine/engine.go depth-budget check
// (req.Depth > cfg.Engine.MaxDepth), reused here as a scoring cutoff
// instead of a frontier-push rejection.
package breadthfirst

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/IshaanNene/scoregoat/internal/types"
	"github.com/IshaanNene/scoregoat/internal/worker"
)

// Strategy is a breadth-first reference crawling strategy.
type Strategy struct {
	emitter  *worker.ScoreEmitter
	logger   *slog.Logger
	maxDepth int
	maxPages int64

	pagesCrawled atomic.Int64
}

// New returns a breadth-first Strategy. maxDepth bounds how deep links
// are still scored (0 disables the bound); maxPages bounds total pages
// crawled before Finished() reports true (0 disables the bound).
func New(emitter *worker.ScoreEmitter, maxDepth int, maxPages int64, logger *slog.Logger) *Strategy {
	return &Strategy{
		emitter:  emitter,
		logger:   logger.With("component", "strategy", "name", "breadthfirst"),
		maxDepth: maxDepth,
		maxPages: maxPages,
	}
}

// AddSeeds schedules every seed at score 1.0.
func (s *Strategy) AddSeeds(seeds []*types.Request) error {
	for _, seed := range seeds {
		if err := s.emitter.Send(context.Background(), seed, 1.0, true); err != nil {
			return err
		}
		seed.State = types.Queued
	}
	return nil
}

// PageCrawled marks the page crawled. No further scoring happens here;
// scoring of the page's own links happens in LinksExtracted.
func (s *Strategy) PageCrawled(resp *types.Response) error {
	if resp.Request != nil {
		resp.Request.State = types.Crawled
	}
	s.pagesCrawled.Add(1)
	return nil
}

// LinksExtracted scores every newly seen (NOT_CRAWLED) link not past the
// depth budget 1.0 and schedules it; links past the budget are left
// NOT_CRAWLED and never scheduled, and links already in another state
// are left as they are.
func (s *Strategy) LinksExtracted(req *types.Request, links []*types.Request) error {
	for _, link := range links {
		if link.State != types.NotCrawled {
			continue
		}
		if s.maxDepth > 0 && link.Depth > s.maxDepth {
			continue
		}
		if err := s.emitter.Send(context.Background(), link, 1.0, true); err != nil {
			return err
		}
		link.State = types.Queued
	}
	return nil
}

// PageError marks the request errored; breadth-first never retries.
func (s *Strategy) PageError(req *types.Request, errMsg string) error {
	req.State = types.Error
	s.logger.Debug("page error", "url", req.URL, "error", errMsg)
	return nil
}

// Finished reports true once maxPages pages have been crawled.
func (s *Strategy) Finished() bool {
	return s.maxPages > 0 && s.pagesCrawled.Load() >= s.maxPages
}

// Close is a no-op: breadth-first holds no resources to release.
func (s *Strategy) Close() error { return nil }
