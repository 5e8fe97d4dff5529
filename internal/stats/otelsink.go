package stats

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelSink publishes the latest counter snapshot as OpenTelemetry
// asynchronous (observable) counters. Grounded on the pack's adoption
// of go.opentelemetry.io/otel (WessleyAI-wessley-mvp uses the otel
// tracing API in pkg/natsutil); no pack repo shows the otel/metric
// API specifically, so this registers one observable int64 counter
// per snapshot key via a single callback, which is the standard
// pattern for exporting externally-maintained counters documented by
// the otel/metric API itself.
type OTelSink struct {
	meter metric.Meter

	mu       sync.Mutex
	tags     map[string]string
	snapshot map[string]int64

	registered map[string]struct{}
	regMu      sync.Mutex
}

// NewOTelSink returns an OTelSink publishing through the given meter.
func NewOTelSink(meter metric.Meter) *OTelSink {
	return &OTelSink{
		meter:      meter,
		registered: make(map[string]struct{}),
	}
}

// Emit stores the latest snapshot and lazily registers an observable
// counter for any newly-seen key.
func (s *OTelSink) Emit(tags map[string]string, counters map[string]int64) {
	s.mu.Lock()
	s.tags = tags
	s.snapshot = counters
	s.mu.Unlock()

	for name := range counters {
		s.ensureRegistered(name)
	}
}

func (s *OTelSink) ensureRegistered(name string) {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	if _, ok := s.registered[name]; ok {
		return
	}

	instrumentName := "strategy_worker." + name
	counter, err := s.meter.Int64ObservableCounter(instrumentName,
		metric.WithDescription(fmt.Sprintf("strategy worker counter: %s", name)))
	if err != nil {
		return
	}

	capturedName := name
	_, err = s.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		s.mu.Lock()
		value := s.snapshot[capturedName]
		tags := s.tags
		s.mu.Unlock()

		o.ObserveInt64(counter, value, metric.WithAttributes(toAttributes(tags)...))
		return nil
	}, counter)
	if err != nil {
		return
	}
	s.registered[name] = struct{}{}
}

func toAttributes(tags map[string]string) []attribute.KeyValue {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, attribute.String(k, tags[k]))
	}
	return out
}
