package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/eshop-labs/checkout/internal/pkg/logging"
	"github.com/eshop-labs/checkout/internal/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-ID"

// RequestLogger injects a request-scoped logger into the context and writes
// one access log line per request. The request id is taken from the header
// when supplied, generated otherwise, and always echoed back.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(headerRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)

			reqLogger := base.With(zap.String("request_id", rid))
			ctx := logging.ContextWithLogger(r.Context(), reqLogger)

			start := time.Now()
			lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lrw, r.WithContext(ctx))

			reqLogger.Info("http_access",
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.String("path", r.URL.Path),
				zap.Int("status", lrw.status),
				zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// HTTPMetrics records request counts and latencies with low-cardinality
// route-template labels. Vectors come in via DI, never created here.
func HTTPMetrics(met *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if met == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lrw, r)

			route := routePattern(r)
			met.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(lrw.status)).Inc()
			met.HTTPLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Tracing opens one server span per request. The span name uses the raw
// path because chi resolves the route pattern only after the handler ran;
// the resolved pattern is attached as an attribute afterwards.
func Tracing() func(http.Handler) http.Handler {
	tracer := otel.Tracer("checkout.http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				))
			defer span.End()

			lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lrw, r.WithContext(ctx))

			span.SetAttributes(
				attribute.String("http.route", routePattern(r)),
				attribute.Int("http.status_code", lrw.status),
			)
		})
	}
}

// routePattern is only meaningful after the handler ran, once chi has
// resolved the route.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
