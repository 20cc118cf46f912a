package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelResource   = "resource"
	ProfilingLabelOperation  = "operation"
	ProfilingLabelDepartment = "department"
)

// MaxLabelValueLength caps label values to keep profile series bounded
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped from profiling labels. Identifiers belong
// on spans, not on profiles.
var highCardinalityLabels = map[string]bool{
	"user_id":       true,
	"actor_id":      true,
	"request_id":    true,
	"trace_id":      true,
	"span_id":       true,
	"attachment_id": true,
}

// WithProfilingLabels runs fn with pprof labels attached to ctx so CPU and
// allocation samples taken inside fn can be filtered by label in Pyroscope.
// The labels map is not retained.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// OperationLabels builds labels for a named service operation
func OperationLabels(operation string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		labels[k] = v
	}
	labels[ProfilingLabelOperation] = operation
	return labels
}

// HTTPRequestLabels builds labels for a routed HTTP request
func HTTPRequestLabels(resource, route, method string) map[string]string {
	labels := make(map[string]string, 3)
	if resource != "" {
		labels[ProfilingLabelResource] = resource
	}
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	return labels
}

// sanitizeLabels returns key/value pairs sorted by key with empty entries and
// high-cardinality keys removed and long values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		clean := sanitizeLabelKey(key)
		if clean == "" || value == "" || highCardinalityLabels[clean] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		pairs = append(pairs, clean, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_], mapping spaces
// and dashes to underscores.
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == ' ' || c == '-':
			b.WriteByte('_')
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_':
			b.WriteByte(c)
		}
	}
	return b.String()
}
