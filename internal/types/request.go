package types

import (
	"fmt"
	"net/url"
	"time"
)

// Fingerprint is the opaque, content-addressed identity of a Request.
// It is the equality key for state lookups in the states backend.
type Fingerprint string

// Request is a crawl request as produced by a spider: a URL plus whatever
// metadata the spider and the strategy attach to it. It mirrors frontera's
// Request shape (fingerprint, url, meta) rather than carrying HTTP
// transport details — those belong to the spider process, not this worker.
type Request struct {
	// Fingerprint is the content-addressed identity used for state lookups.
	Fingerprint Fingerprint

	// URL is the target URL.
	URL string

	// Meta carries arbitrary metadata. The "jid" key holds the job id used
	// for staleness filtering; prefer JobID/SetJobID over touching Meta
	// directly.
	Meta map[string]any

	// Depth is the crawl depth from the seed URL, carried through for
	// strategies that want it; the worker itself never inspects it.
	Depth int

	// CreatedAt is when this request was produced upstream.
	CreatedAt time.Time

	// State is the cached crawl-progress label for this fingerprint.
	// StatesContext.SetStates populates it from the backend's cache;
	// strategies read and mutate it; the backend's UpdateCache writes it
	// back.
	State State
}

// NewRequest creates a new Request, computing its fingerprint from the URL.
func NewRequest(rawURL string) (*Request, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	return &Request{
		Fingerprint: ComputeFingerprint("GET", rawURL),
		URL:         rawURL,
		Meta:        make(map[string]any),
		CreatedAt:   time.Now(),
	}, nil
}

// JobID returns the request's stamped job id, and whether one was set.
// A jid that went through a JSON round trip arrives as float64 and is
// converted back.
func (r *Request) JobID() (int64, bool) {
	if r.Meta == nil {
		return 0, false
	}
	v, ok := r.Meta["jid"]
	if !ok {
		return 0, false
	}
	switch jid := v.(type) {
	case int64:
		return jid, true
	case int:
		return int64(jid), true
	case float64:
		return int64(jid), true
	default:
		return 0, false
	}
}

// SetJobID stamps the request's "jid" meta field.
func (r *Request) SetJobID(jid int64) {
	if r.Meta == nil {
		r.Meta = make(map[string]any)
	}
	r.Meta["jid"] = jid
}

// Domain returns the hostname of the request URL, or "" if unparseable.
func (r *Request) Domain() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	clone := *r
	clone.Meta = make(map[string]any, len(r.Meta))
	for k, v := range r.Meta {
		clone.Meta[k] = v
	}
	return &clone
}
