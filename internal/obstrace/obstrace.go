// Package obstrace wraps block lifecycle transitions in OpenTelemetry
// spans, grounded on the tracing helper pattern used for the teacher's
// react-loop iterations (internal/reference/tracing_teacher.go.txt):
// one helper to start a span with common attributes, one to mark its
// result.
package obstrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

const (
	traceScope = "wodwiki.runtime"

	traceAttrBlockKey   = "wodwiki.block_key"
	traceAttrBlockType  = "wodwiki.block_type"
	traceAttrHook       = "wodwiki.hook"
	traceAttrStatus     = "wodwiki.status"
)

// StartHook opens a span for one lifecycle hook invocation (mount, next,
// unmount, dispose) on a block.
func StartHook(ctx context.Context, hook string, key memory.Key, blockType string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(traceAttrBlockKey, string(key)),
		attribute.String(traceAttrBlockType, blockType),
		attribute.String(traceAttrHook, hook),
	}
	return otel.Tracer(traceScope).Start(ctx, "wodwiki.block."+hook, trace.WithAttributes(attrs...))
}

// MarkResult records err (if any) and closes the span with an outcome
// status attribute.
func MarkResult(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(traceAttrStatus, "error"))
		return
	}
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.String(traceAttrStatus, "success"))
}
