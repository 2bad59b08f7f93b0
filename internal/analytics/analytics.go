// Package analytics delivers named events with flat key-value payloads
// to an optional sink. The gateway emits one event per settled
// submission (accepted, rejected, failed) so the marketing side can
// track funnel conversion without a dedicated pipeline.
package analytics

import (
	"sort"

	"github.com/ignite/subscription-gateway/internal/pkg/logger"
)

// Sink receives named events with a flat key-value payload.
// Implementations must not block the submission path.
type Sink interface {
	Track(event string, props map[string]string)
}

// LoggerSink writes events through the structured logger, which masks
// subscriber emails before emission.
type LoggerSink struct{}

// NewLoggerSink returns a sink backed by the default logger.
func NewLoggerSink() *LoggerSink {
	return &LoggerSink{}
}

// Track emits the event as an INFO entry with sorted fields so output
// is stable for log-based dashboards.
func (s *LoggerSink) Track(event string, props map[string]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]interface{}, 0, 2+2*len(keys))
	fields = append(fields, "event", event)
	for _, k := range keys {
		fields = append(fields, k, props[k])
	}
	logger.Info("analytics event", fields...)
}

// NopSink discards all events, used when analytics is disabled.
type NopSink struct{}

// Track implements Sink.
func (NopSink) Track(string, map[string]string) {}
