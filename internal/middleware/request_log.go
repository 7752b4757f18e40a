package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/PriyaG26/Chat-app/internal/logger"
)

// RequestLog logs every HTTP request: method, path and duration (async).
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer logger.DeferLogDuration("http "+r.Method+" "+r.URL.Path, start)()
		next.ServeHTTP(w, r)
	})
}

// MaskSessionID masks a session id for logging.
func MaskSessionID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "***"
}
