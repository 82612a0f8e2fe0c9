package ratelimit

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/metrics"
)

// Middleware returns chi middleware that gates requests through the governor.
// Mount it on the query-serving namespace only; auxiliary/status endpoints
// stay exempt by not being behind it.
func Middleware(g *Governor, trustProxy bool, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r, trustProxy)
			if !g.Admit(key, time.Now()) {
				metrics.AdmissionRejectionsTotal.Inc()
				logger.Warn("rate limit exceeded",
					zap.String("client", key),
					zap.String("path", r.URL.Path),
				)
				windowSec := int(g.Window().Seconds())
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(windowSec))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    "rate_limited",
					"message": fmt.Sprintf("too many requests: retry after the %ds window elapses", windowSec),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey extracts the client address used as the admission key.
//
// When trustProxy is true, X-Real-IP is checked first, then the first entry
// of X-Forwarded-For. Header values are validated with net.ParseIP to keep
// non-IP strings out of the governor's key space. When trustProxy is false,
// only RemoteAddr is used.
func ClientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return ip.String()
			}
		}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := xff
			if cut, _, ok := strings.Cut(xff, ","); ok {
				first = cut
			}
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
