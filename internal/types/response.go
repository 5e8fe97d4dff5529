package types

import (
	"bytes"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Response is a Request plus its fetch outcome, as produced by a spider.
// It carries the same fingerprint and meta as the originating Request —
// the worker never re-derives a fingerprint from a Response, it reads the
// one the spider already computed.
type Response struct {
	// Request is the originating request (fingerprint, url, meta).
	Request *Request

	// StatusCode is the HTTP status code observed by the spider.
	StatusCode int

	// Body is the raw response body, kept so reference strategies can
	// inspect page content (see internal/strategy/contentscore).
	Body []byte

	// FinalURL is the URL after any redirects the spider followed.
	FinalURL string

	// FetchDuration is how long the spider's fetch took.
	FetchDuration time.Duration

	// FetchedAt is when the spider received this response.
	FetchedAt time.Time

	doc *goquery.Document
}

// NewResponse builds a Response for the given request and fetch outcome.
func NewResponse(req *Request, statusCode int, body []byte, finalURL string, duration time.Duration) *Response {
	return &Response{
		Request:       req,
		StatusCode:    statusCode,
		Body:          body,
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// Document returns a parsed goquery document over the response body,
// lazily initializing it. Used by content-aware reference strategies.
func (r *Response) Document() (*goquery.Document, error) {
	if r.doc != nil {
		return r.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(io.NopCloser(bytes.NewReader(r.Body)))
	if err != nil {
		return nil, err
	}
	r.doc = doc
	return doc, nil
}

// IsSuccess returns true if the response status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsServerError returns true if the response status is 5xx.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}
