package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/yume/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionHeader      = "X-Session-ID"
	maxSessionIDLength = 128
)

type ctxKey string

const sessionIDKey ctxKey = "session_id"

// SessionMiddleware reads the session id from X-Session-ID, generating one
// when the header is missing, and echoes it back on the response.
func SessionMiddleware(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionHeader)
			if len(sessionID) > maxSessionIDLength {
				respondError(w, l, http.StatusBadRequest, "invalid_request", "session id is too long")
				return
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			w.Header().Set(SessionHeader, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok {
		return sessionID
	}
	return ""
}

// RequestLogger logs one line per request once the handler has finished
func RequestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.WithTrace(r.Context(), l).Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("session_id", ww.Header().Get(SessionHeader)))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
