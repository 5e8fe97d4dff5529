package stats

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
)

// PrometheusSink serves the most recent counter snapshot in Prometheus
// text exposition format. Grounded on the teacher's
// internal/observability/metrics.go Metrics.ServeHTTP, generalized from
// a fixed metric list to whatever keys the latest snapshot carries.
type PrometheusSink struct {
	mu       sync.Mutex
	tags     map[string]string
	snapshot map[string]int64
}

// NewPrometheusSink returns an empty PrometheusSink. Mount it with
// http.Handle before StartServer's mux, or call ServeHTTP directly.
func NewPrometheusSink() *PrometheusSink {
	return &PrometheusSink{}
}

// Emit stores the latest snapshot for the next scrape.
func (s *PrometheusSink) Emit(tags map[string]string, counters map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = tags
	s.snapshot = counters
}

// ServeHTTP renders the stored snapshot as Prometheus counters, one
// "strategy_worker_<name>" metric per key, labeled with the tags from
// the last Emit call.
func (s *PrometheusSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tags := s.tags
	snapshot := s.snapshot
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	labels := renderLabels(tags)

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		metric := "strategy_worker_" + name
		fmt.Fprintf(w, "# HELP %s strategy worker counter %s\n", metric, name)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric)
		fmt.Fprintf(w, "%s%s %d\n", metric, labels, snapshot[name])
	}
}

func renderLabels(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := "{"
	for i, k := range keys {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%s=%q", k, tags[k])
	}
	return out + "}"
}

// StartServer starts the metrics HTTP server in a background goroutine,
// mirroring the teacher's Metrics.StartServer shape (mux with a
// /health endpoint alongside the metrics path).
func (s *PrometheusSink) StartServer(addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, s)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
	return nil
}
