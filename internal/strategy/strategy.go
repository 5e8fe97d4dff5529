// Package strategy defines the crawling-strategy plug-in interface
// (spec.md §1, GLOSSARY). A strategy decides what to do with newly
// seen seeds, crawled pages, extracted links, and fetch errors, and
// tells the worker when the crawl is finished. It is the one external
// collaborator this repo also ships reference implementations of
// (breadthfirst, contentscore), since a worker binary needs at least
// one strategy to run.
package strategy

import "github.com/IshaanNene/scoregoat/internal/types"

// Strategy is the crawling-strategy plug-in interface the strategy
// adapter dispatches decoded events to (spec.md §4.4).
type Strategy interface {
	// AddSeeds is called once per add_seeds event with every seed in
	// the event, already jid-stamped and state-loaded.
	AddSeeds(seeds []*types.Request) error

	// PageCrawled is called for a crawled page whose jid matched the
	// worker's current job id.
	PageCrawled(resp *types.Response) error

	// LinksExtracted is called for a links_extracted event whose
	// source request's jid matched the worker's current job id.
	LinksExtracted(req *types.Request, links []*types.Request) error

	// PageError is called for a request_error event whose jid matched.
	PageError(req *types.Request, errMsg string) error

	// Finished reports whether the crawl is complete. Checked once per
	// work tick (spec.md §4.3 step 5); returning true initiates
	// graceful shutdown.
	Finished() bool

	// Close releases any strategy-held resources during drain.
	Close() error
}
