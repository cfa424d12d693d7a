package requesttrace

import (
	"context"
	"errors"
)

type contextKey string

const (
	ctxTraceInfo contextKey = "ACCOUNTFLOW_REQUEST_TRACE"
)

// OriginKind represents where a request or signal entered the system.
type OriginKind string

const (
	OriginEventBridge OriginKind = "eventbridge"
	OriginOperator    OriginKind = "operator"
	OriginUnknown     OriginKind = "unknown"
)

// TraceInfo captures request-scoped metadata needed for traceability.
// IngestID is set only once an event envelope has been accepted for
// processing; RequestID is optional but encouraged.
type TraceInfo struct {
	Origin    OriginKind
	IngestID  string
	RequestID string
}

// IntoContext stores the TraceInfo in the provided context.
func IntoContext(ctx context.Context, trace TraceInfo) context.Context {
	return context.WithValue(ctx, ctxTraceInfo, trace)
}

// FromContext extracts the TraceInfo from context, returning false when not present.
func FromContext(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	v := ctx.Value(ctxTraceInfo)
	if v == nil {
		return TraceInfo{}, false
	}

	trace, ok := v.(TraceInfo)
	return trace, ok
}

// FromContextOrUnknown returns the TraceInfo stored on the context, or an
// unknown-origin record when absent.
func FromContextOrUnknown(ctx context.Context) TraceInfo {
	if trace, ok := FromContext(ctx); ok {
		return trace
	}
	return TraceInfo{Origin: OriginUnknown}
}

// EventBridge builds a TraceInfo for an upstream event delivery. Returns an
// error when the ingest ID is missing, since every accepted envelope must be
// traceable back to its delivery.
func EventBridge(ingestID, requestID string) (TraceInfo, error) {
	if ingestID == "" {
		return TraceInfo{}, errors.New("ingest id is required to trace an event delivery")
	}
	return TraceInfo{Origin: OriginEventBridge, IngestID: ingestID, RequestID: requestID}, nil
}

// Operator builds a TraceInfo for operator-initiated requests (API calls, CLI runs).
func Operator(requestID string) TraceInfo {
	return TraceInfo{Origin: OriginOperator, RequestID: requestID}
}
