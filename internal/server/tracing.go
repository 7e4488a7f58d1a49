package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/urlquery/pkg/urlquery"
)

// instrument wraps every request in a server span and records request
// metrics under the matched route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.RequestURI()),
				attribute.String("http.request_id", middleware.GetReqID(r.Context())),
			),
		)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		s.metrics.RecordRequest(route, r.Method, status, time.Since(start).Seconds())
	})
}

// observeNormalize returns a hook that records a normalization on the
// span in ctx and in metrics.
func (s *Server) observeNormalize(ctx context.Context) func(urlquery.Normalized) {
	return func(n urlquery.Normalized) {
		trace.SpanFromContext(ctx).AddEvent("urlquery.normalized", trace.WithAttributes(
			attribute.Int("urlquery.filters", n.Filters.Len()),
			attribute.Bool("urlquery.sort_param", n.SortParam),
			attribute.StringSlice("urlquery.raw_filters", n.Raw),
			attribute.StringSlice("urlquery.unknown_sorts", n.Unknown),
		))
		s.metrics.RecordNormalization(n)
	}
}

// commandSpan starts a span for one WebSocket command.
func (s *Server) commandSpan(ctx context.Context, sessionID, op string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "urlquery.command "+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("urlquery.session_id", sessionID),
			attribute.String("urlquery.op", op),
		),
	)
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
