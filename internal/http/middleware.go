package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_pharmacy/internal/logger"
	"github.com/fjod/go_pharmacy/internal/session"
	"github.com/go-chi/chi/v5/middleware"
)

const SessionHeader = "X-Session-ID"

type ctxKey int

const (
	sessionKey ctxKey = iota
	loggerKey
)

// SessionMiddleware resolves the shopper's session from the X-Session-ID header. A missing
// or unknown id gets a fresh session; the id in use is always echoed back.
func SessionMiddleware(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := store.GetOrCreate(r.Header.Get(SessionHeader))
			w.Header().Set(SessionHeader, sess.ID)
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

// RequestLogger logs one line per request through the structured logger and makes a
// request-scoped logger available to the handlers.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			reqLog := log.With("request_id", middleware.GetReqID(r.Context()))
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerKey, reqLog)))
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"session_id", w.Header().Get(SessionHeader),
			)
		})
	}
}

func loggerFromContext(ctx context.Context) *logger.Logger {
	if log, ok := ctx.Value(loggerKey).(*logger.Logger); ok {
		return log
	}
	return logger.NewNop()
}

func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
