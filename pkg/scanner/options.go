package scanner

import (
	"github.com/ajitpratap0/pairscan/pkg/frame"
	"github.com/ajitpratap0/pairscan/pkg/metrics"
)

// Option configures a scanner
type Option func(*options)

type options struct {
	source  *frame.Frame
	target  *frame.Frame
	metrics *metrics.ScanMetrics
}

// WithFrames supplies already loaded tables; the configured paths are not
// read. target may be nil.
func WithFrames(source, target *frame.Frame) Option {
	return func(o *options) {
		o.source = source
		o.target = target
	}
}

// WithMetrics records scan metrics into m
func WithMetrics(m *metrics.ScanMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
