package observability

import (
	"context"
	"time"
)

// Operation record types.
const (
	OpDBQuery     = "db_query"
	OpServiceCall = "service_call"
	OpGraphStep   = "graph_step"
	OpExternalAPI = "external_api_call"
)

// append stores a record in the ambient buffer. A missing buffer, or any
// panic while normalizing details, is a silent no-op: instrumentation may
// never fail the request it observes.
func appendRecord(ctx context.Context, recType string, details map[string]any, duration *float64) {
	defer func() { _ = recover() }()

	buf := BufferFrom(ctx)
	if buf == nil {
		return
	}
	buf.Append(OperationRecord{
		Type:       recType,
		Details:    details,
		DurationMs: duration,
	})
}

// RecordDBQuery records a database call. Query text is bounded to 500
// characters; bound parameters are prefixed with param_, redacted when the
// key matches the sensitive-term set, and stringified to 100 characters when
// not a primitive.
func RecordDBQuery(ctx context.Context, query string, params map[string]any, durationMs float64) {
	details := map[string]any{
		"query": truncate(query, maxQueryLen),
	}
	for k, v := range params {
		key := "param_" + k
		switch {
		case isSensitiveKey(k):
			details[key] = RedactedPlaceholder
		case isPrimitive(v):
			details[key] = v
		default:
			details[key] = stringify(v, maxStringifiedLen)
		}
	}
	appendRecord(ctx, OpDBQuery, details, &durationMs)
}

// RecordServiceCall records an internal service-layer call.
func RecordServiceCall(ctx context.Context, service, operation string, details map[string]any) {
	d := Sanitize(details)
	if d == nil {
		d = make(map[string]any, 2)
	}
	d["service"] = service
	d["operation"] = operation
	appendRecord(ctx, OpServiceCall, d, nil)
}

// RecordGraphStep records one sub-workflow (chain/tool/model) invocation.
// Inputs are flattened into input_<key> fields: strings bounded to 200
// characters, primitives passed through, anything else stringified to 100.
func RecordGraphStep(ctx context.Context, name string, inputs map[string]any, durationMs *float64) {
	details := map[string]any{
		"name": name,
	}
	for k, v := range inputs {
		key := "input_" + k
		switch {
		case isSensitiveKey(k):
			details[key] = RedactedPlaceholder
		default:
			if s, ok := v.(string); ok {
				details[key] = truncate(s, maxDetailLen)
			} else if isPrimitive(v) {
				details[key] = v
			} else {
				details[key] = stringify(v, maxStringifiedLen)
			}
		}
	}
	appendRecord(ctx, OpGraphStep, details, durationMs)
}

// RecordExternalAPI records a call to an external provider.
func RecordExternalAPI(ctx context.Context, provider, operation string, details map[string]any, durationMs float64) {
	d := Sanitize(details)
	if d == nil {
		d = make(map[string]any, 2)
	}
	d["provider"] = provider
	d["operation"] = operation
	appendRecord(ctx, OpExternalAPI, d, &durationMs)
}

// LogOperation appends an arbitrary operation with sanitized details. Thin
// escape hatch for call sites not covered by the typed recorders.
func LogOperation(ctx context.Context, recType string, details map[string]any) {
	appendRecord(ctx, recType, Sanitize(details), nil)
}

// durationSince converts an elapsed time to the milliseconds format records carry.
func durationSince(start time.Time) *float64 {
	ms := float64(time.Since(start).Microseconds()) / 1000.0
	return &ms
}
