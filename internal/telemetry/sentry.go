// Package telemetry wraps Sentry tracing for the service layer.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const serverName = "counselai"

// Config holds the settings Init needs to bring up Sentry.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// Init starts the Sentry client with tracing enabled and returns a flush
// function for shutdown. An empty DSN disables telemetry entirely; an init
// failure is logged but never fatal, the service runs untraced instead.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	env := cfg.Environment
	if env == "" {
		env = "development"
	}
	rate := cfg.TracesSampleRate
	if rate == 0 {
		rate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      env,
		EnableTracing:    true,
		TracesSampleRate: rate,
		Debug:            cfg.Debug,
		ServerName:       serverName,
		TracesSampler: sentry.TracesSampler(func(sc sentry.SamplingContext) float64 {
			// Health probes fire constantly and are never interesting.
			if sc.Span.Name == "GET /health" || sc.Span.Op == "http.server GET /health" {
				return 0.0
			}
			// Child spans inherit their parent's sampling decision so a
			// trace is either captured whole or not at all.
			var root sentry.SpanID
			if sc.Span.ParentSpanID != root {
				if sc.Span.Sampled.Bool() {
					return 1.0
				}
				return 0.0
			}
			return rate
		}),
	})
	if err != nil {
		log.Printf("sentry: init failed, continuing without tracing: %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: tracing enabled (environment=%s sample_rate=%.2f)", env, rate)
	return func() { sentry.Flush(5 * time.Second) }, nil
}

// SpanAttributes carries the identifiers every service span is tagged with.
type SpanAttributes struct {
	AgentID   string
	ChatID    string
	Operation string
}

// Span is a thin wrapper over sentry.Span that tolerates a nil inner span,
// so callers never have to guard telemetry calls.
type Span struct {
	inner *sentry.Span
}

// StartSpan opens a span named after the service operation. When the context
// already carries a transaction (the HTTP middleware starts one per request)
// the span becomes its child; otherwise, as for CLI and worker entry points,
// it starts a fresh transaction.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	if attrs.AgentID != "" {
		span.SetTag("agent_id", attrs.AgentID)
	}
	if attrs.ChatID != "" {
		span.SetTag("chat_id", attrs.ChatID)
	}
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}

	return span.Context(), &Span{inner: span}
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError marks the span failed and reports the error.
func (s *Span) SetError(err error) {
	if s.inner == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	if hub := sentry.GetHubFromContext(s.inner.Context()); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
}
