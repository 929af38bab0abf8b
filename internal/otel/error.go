package otel

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/Alturino/salesrep/internal/errors"
)

const KeyErrorKind = "error.kind"

// RecordError marks span as failed and tags it with the error kind so traces
// can be grouped by StockExceeded, RemoteFailure and the rest. A nil err is
// ignored.
func RecordError(err error, span trace.Span) {
	if err == nil || span == nil {
		return
	}
	span.SetAttributes(attribute.String(KeyErrorKind, inErrors.Kind(err)))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
