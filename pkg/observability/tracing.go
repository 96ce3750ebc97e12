// Package observability provides OpenTelemetry tracing for pairscan scans
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ajitpratap0/pairscan"

// Tracer returns the pairscan tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Span wraps a trace span and batches its attributes until End
type Span struct {
	span       trace.Span
	attributes []attribute.KeyValue
}

// NewSpan starts a span named operationName
func NewSpan(ctx context.Context, operationName string) (context.Context, *Span) {
	ctx, span := Tracer().Start(ctx, operationName)
	return ctx, &Span{span: span}
}

// SetAttribute adds an attribute to the span
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// RecordError marks the span failed
func (s *Span) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End flushes the batched attributes and ends the span
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}

// ScanTracer names spans after the scanner that starts them
type ScanTracer struct {
	scanner string
}

// NewScanTracer creates a tracer for scanner ("corr" or "stable")
func NewScanTracer(scanner string) *ScanTracer {
	return &ScanTracer{scanner: scanner}
}

// StartSpan starts a span named "<scanner>.<operation>"
func (st *ScanTracer) StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, span := NewSpan(ctx, st.scanner+"."+operation)
	span.SetAttribute("scan.scanner", st.scanner)
	span.SetAttribute("scan.operation", operation)
	return ctx, span
}

// Trace runs fn inside a span and records its error, if any
func (st *ScanTracer) Trace(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := st.StartSpan(ctx, operation)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	span.span.SetStatus(codes.Ok, "")
	return nil
}
