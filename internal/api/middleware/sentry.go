package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// spanStatusByHTTP maps the exact HTTP statuses we emit to Sentry span
// statuses. 502 means the runner or model provider failed, which is an
// upstream problem, so it maps to unavailable rather than internal error.
var spanStatusByHTTP = map[int]sentry.SpanStatus{
	http.StatusBadRequest:            sentry.SpanStatusInvalidArgument,
	http.StatusUnauthorized:          sentry.SpanStatusUnauthenticated,
	http.StatusForbidden:             sentry.SpanStatusPermissionDenied,
	http.StatusNotFound:              sentry.SpanStatusNotFound,
	http.StatusConflict:              sentry.SpanStatusAlreadyExists,
	http.StatusRequestEntityTooLarge: sentry.SpanStatusInvalidArgument,
	http.StatusTooManyRequests:       sentry.SpanStatusResourceExhausted,
	http.StatusInternalServerError:   sentry.SpanStatusInternalError,
	http.StatusNotImplemented:        sentry.SpanStatusUnimplemented,
	http.StatusBadGateway:            sentry.SpanStatusUnavailable,
	http.StatusServiceUnavailable:    sentry.SpanStatusUnavailable,
	http.StatusGatewayTimeout:        sentry.SpanStatusDeadlineExceeded,
}

func spanStatus(httpStatus int) sentry.SpanStatus {
	if s, ok := spanStatusByHTTP[httpStatus]; ok {
		return s
	}
	switch {
	case httpStatus >= 200 && httpStatus < 300:
		return sentry.SpanStatusOK
	case httpStatus >= 400 && httpStatus < 500:
		return sentry.SpanStatusInvalidArgument
	case httpStatus >= 500:
		return sentry.SpanStatusInternalError
	}
	return sentry.SpanStatusUnknown
}

// SentryMiddleware opens a Sentry transaction per request, tags it with the
// request and agent identifiers, and reports panics and 5xx responses. It is
// a no-op passthrough when Sentry was never initialized.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		opts := []sentry.SpanOption{
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
		}
		// Honor distributed trace headers from the ingress adapter.
		if trace := r.Header.Get("sentry-trace"); trace != "" {
			opts = append(opts, sentry.ContinueFromHeaders(trace, r.Header.Get("baggage")))
		}

		tx := sentry.StartTransaction(r.Context(), fmt.Sprintf("%s %s", r.Method, r.URL.Path), opts...)
		defer tx.Finish()

		r = r.WithContext(sentry.SetHubOnContext(tx.Context(), hub))

		hub.Scope().SetContext("request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"query":       r.URL.RawQuery,
			"remote_addr": r.RemoteAddr,
		})
		for tag, value := range map[string]string{
			"request_id": GetRequestID(r.Context()),
			"agent_id":   r.Header.Get("X-Agent-ID"),
		} {
			if value != "" {
				hub.Scope().SetTag(tag, value)
				tx.SetTag(tag, value)
			}
		}
		if ua := r.UserAgent(); ua != "" {
			hub.Scope().SetTag("user_agent", ua)
		}

		defer func() {
			if rec := recover(); rec != nil {
				tx.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), rec)
				// Let any outer recovery middleware see it too.
				panic(rec)
			}
		}()

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		tx.Status = spanStatus(status)
		tx.SetData("http.response.status_code", status)

		// Exceptions are captured at the service layer; a bare 5xx without
		// one still deserves an event.
		if status >= 500 {
			hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)))
		}
	})
}
