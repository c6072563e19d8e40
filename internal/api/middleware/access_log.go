package middleware

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// statusWriter captures the response status and size for the access log.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// AccessLog writes one JSON line per request. The agent_id field comes from
// the route parameter when the request hits an agent-scoped endpoint, so log
// searches can be filtered per tenant without parsing paths.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}

		entry := map[string]interface{}{
			"ts":          start.UTC().Format(time.RFC3339Nano),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      status,
			"bytes":       sw.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if id := GetRequestID(r.Context()); id != "" {
			entry["request_id"] = id
		}
		if agentID := routeAgentID(r); agentID != "" {
			entry["agent_id"] = agentID
		}
		if ip := clientIP(r); ip != "" {
			entry["remote_addr"] = ip
		}
		if ua := r.UserAgent(); ua != "" {
			entry["user_agent"] = ua
		}

		line, err := json.Marshal(entry)
		if err != nil {
			log.Printf("access_log_marshal_error: %v", err)
			return
		}
		log.Println(string(line))
	})
}

// routeAgentID pulls the agent identifier out of the matched chi route, or
// the X-Agent-ID header when the endpoint is not agent-scoped.
func routeAgentID(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if id := rctx.URLParam("agentID"); id != "" {
			return id
		}
	}
	return r.Header.Get("X-Agent-ID")
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
