// Package contentscore is a reference strategy that biases emitted
// scores by a crawled page's apparent content quality: presence of a
// meta description and heading density. Grounded on the teacher's
// internal/parser package, specifically CSSParser's goquery-based
// extraction (css.go) and XPathParser's htmlquery/golang.org/x/net/html
// fallback (xpath.go), composed the way CompositeParser chains them
// (composite.go) — here as a two-stage scorer instead of a two-stage
// item extractor.
package contentscore

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"

	"github.com/IshaanNene/scoregoat/internal/types"
	"github.com/IshaanNene/scoregoat/internal/worker"
)

const (
	baseScore            = 0.5
	descriptionBonus     = 0.2
	headingDensityBonus  = 0.3
	headingDensityPerTag = 0.02
)

// Strategy scores links uniformly at intake, then re-scores a page's
// own outbound links after the page is crawled, biased by how
// content-rich the crawled page looked.
type Strategy struct {
	emitter  *worker.ScoreEmitter
	logger   *slog.Logger
	maxPages int64
	crawled  int64

	// bodies holds page_crawled bodies keyed by fingerprint until the
	// matching links_extracted event arrives and consumes them. The
	// worker is single-threaded (spec.md §5), so no locking is needed.
	bodies map[types.Fingerprint][]byte
}

// New returns a content-aware Strategy.
func New(emitter *worker.ScoreEmitter, maxPages int64, logger *slog.Logger) *Strategy {
	return &Strategy{
		emitter:  emitter,
		logger:   logger.With("component", "strategy", "name", "contentscore"),
		maxPages: maxPages,
		bodies:   make(map[types.Fingerprint][]byte),
	}
}

// AddSeeds schedules every seed at the base score; seeds have no
// content to score yet.
func (s *Strategy) AddSeeds(seeds []*types.Request) error {
	for _, seed := range seeds {
		if err := s.emitter.Send(context.Background(), seed, baseScore, true); err != nil {
			return err
		}
		seed.State = types.Queued
	}
	return nil
}

// PageCrawled marks the page crawled and stashes its body, keyed by
// fingerprint, for LinksExtracted to pick up once links for this same
// page arrive — page_crawled and links_extracted are distinct
// spider-log events, so the body has to survive between them.
func (s *Strategy) PageCrawled(resp *types.Response) error {
	if resp.Request != nil {
		resp.Request.State = types.Crawled
		if len(resp.Body) > 0 {
			s.bodies[resp.Request.Fingerprint] = resp.Body
		}
	}
	s.crawled++
	return nil
}

// LinksExtracted scores req's outbound links using a content-quality
// signal read from the body PageCrawled stashed for req's fingerprint,
// falling back to the base score if no body was ever crawled for req
// (e.g. links_extracted arriving without a matching page_crawled).
func (s *Strategy) LinksExtracted(req *types.Request, links []*types.Request) error {
	score := baseScore
	if body, ok := s.bodies[req.Fingerprint]; ok {
		score = s.scoreBody(body)
		delete(s.bodies, req.Fingerprint)
	}

	for _, link := range links {
		if err := s.emitter.Send(context.Background(), link, score, true); err != nil {
			return err
		}
		link.State = types.Queued
	}
	return nil
}

// scoreBody derives a content-quality score from a page body: a
// present meta description and a healthy heading density both bias
// the score upward.
func (s *Strategy) scoreBody(body []byte) float64 {
	score := baseScore

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return s.scoreBodyXPath(body)
	}

	if desc, exists := doc.Find(`meta[name="description"]`).Attr("content"); exists && strings.TrimSpace(desc) != "" {
		score += descriptionBonus
	}

	headings := doc.Find("h1, h2, h3").Length()
	paragraphs := doc.Find("p").Length()
	if paragraphs > 0 {
		density := float64(headings) / float64(paragraphs)
		score += min(headingDensityBonus, density*headingDensityPerTag*float64(paragraphs))
	}

	if headings == 0 && paragraphs == 0 {
		return s.scoreBodyXPath(body)
	}
	return clamp(score)
}

// scoreBodyXPath is the htmlquery/XPath fallback for markup goquery's
// CSS selectors can't usefully traverse.
func (s *Strategy) scoreBodyXPath(body []byte) float64 {
	score := baseScore

	doc, err := htmlquery.Parse(strings.NewReader(string(body)))
	if err != nil {
		s.logger.Debug("xpath fallback parse failed", "error", err)
		return score
	}

	if node := htmlquery.FindOne(doc, `//meta[@name="description"]/@content`); node != nil {
		if strings.TrimSpace(htmlquery.InnerText(node)) != "" {
			score += descriptionBonus
		}
	}

	headings := len(htmlquery.Find(doc, "//h1|//h2|//h3"))
	if headings > 0 {
		score += headingDensityBonus
	}
	return clamp(score)
}

func clamp(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < 0 {
		return 0
	}
	return score
}

// Finished reports true once maxPages pages have been crawled.
func (s *Strategy) Finished() bool {
	return s.maxPages > 0 && s.crawled >= s.maxPages
}

// PageError never retries; just logs.
func (s *Strategy) PageError(req *types.Request, errMsg string) error {
	req.State = types.Error
	s.logger.Debug("page error", "url", req.URL, "error", errMsg)
	return nil
}

// Close is a no-op: contentscore holds no resources to release.
func (s *Strategy) Close() error { return nil }
