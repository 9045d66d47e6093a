package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Span struct {
	Ctx    context.Context
	otSpan trace.Span
}

func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) *Span {
	spanCtx, otSpan := tracer().Start(ctx, name, trace.WithAttributes(attrs...))

	return &Span{Ctx: spanCtx, otSpan: otSpan}
}

func (s *Span) SetTag(key, value string) {
	s.otSpan.SetAttributes(attribute.String(key, value))
}

func (s *Span) RecordError(err error) {
	s.otSpan.RecordError(err)
	s.otSpan.SetStatus(codes.Error, err.Error())
}

func (s *Span) Finish() {
	s.otSpan.End()
}
