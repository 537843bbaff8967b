package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return sr
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestMiddleware_Spans(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		status     int
		wantName   string
		wantRoute  string
		wantStatus codes.Code
	}{
		{
			name:       "routed request renamed to pattern",
			method:     http.MethodPost,
			path:       "/api/articles/42/approve",
			status:     http.StatusOK,
			wantName:   "POST /api/articles/{id}/approve",
			wantRoute:  "POST /api/articles/{id}/approve",
			wantStatus: codes.Unset,
		},
		{
			name:       "client error is not a span error",
			method:     http.MethodPost,
			path:       "/api/articles/42/approve",
			status:     http.StatusForbidden,
			wantName:   "POST /api/articles/{id}/approve",
			wantRoute:  "POST /api/articles/{id}/approve",
			wantStatus: codes.Unset,
		},
		{
			name:       "server error marks span",
			method:     http.MethodPost,
			path:       "/api/articles/42/approve",
			status:     http.StatusInternalServerError,
			wantName:   "POST /api/articles/{id}/approve",
			wantRoute:  "POST /api/articles/{id}/approve",
			wantStatus: codes.Error,
		},
		{
			name:       "unmatched path keeps raw name",
			method:     http.MethodGet,
			path:       "/nowhere",
			status:     http.StatusNotFound,
			wantName:   "GET /nowhere",
			wantStatus: codes.Unset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := withRecorder(t)

			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/articles/{id}/approve", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			rec := httptest.NewRecorder()
			Middleware(mux).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, tt.wantName, span.Name())
			assert.Equal(t, tt.wantStatus, span.Status().Code)

			attrs := attrMap(span.Attributes())
			assert.Equal(t, int64(tt.status), attrs["http.response.status_code"].AsInt64())
			assert.Equal(t, tt.path, attrs["url.path"].AsString())
			assert.Equal(t, tt.wantRoute, attrs["http.route"].AsString())

			assert.Equal(t, span.SpanContext().TraceID().String(), rec.Header().Get(TraceIDHeader))
		})
	}
}

func TestMiddleware_ContinuesIncomingTrace(t *testing.T) {
	sr := withRecorder(t)
	const parent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("traceparent", parent)
	Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}
