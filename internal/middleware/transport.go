// Package middleware holds http.RoundTripper decorators for outbound client requests.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID is set on every outbound request that does not carry one.
const HeaderRequestID = "X-Request-ID"

var sugar = zap.NewNop().Sugar()

// SetLogger задаёт логгер для мидлвари логирования.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		sugar = l
	}
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with the given middlewares; the first one is the outermost.
func Chain(base http.RoundTripper, mws ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// TokenSource returns the current bearer token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// WithAuth attaches "Authorization: Bearer <token>" read from src on every request.
// Requests that already carry an Authorization header are left untouched.
func WithAuth(src TokenSource) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("Authorization") != "" {
				return next.RoundTrip(r)
			}
			tok := src.Token()
			if tok == "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+tok)
			return next.RoundTrip(r)
		})
	}
}

// WithRequestID tags requests with a random id so client and server logs can be joined.
func WithRequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(HeaderRequestID) != "" {
			return next.RoundTrip(r)
		}
		r = r.Clone(r.Context())
		r.Header.Set(HeaderRequestID, uuid.NewString())
		return next.RoundTrip(r)
	})
}

// WithLogging logs every outbound request with its outcome and duration.
func WithLogging(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		if err != nil {
			sugar.Warnw("request failed",
				"method", r.Method,
				"url", r.URL.Redacted(),
				"request_id", r.Header.Get(HeaderRequestID),
				"duration", time.Since(start),
				"error", err,
			)
			return nil, err
		}
		sugar.Debugw("request",
			"method", r.Method,
			"url", r.URL.Redacted(),
			"request_id", r.Header.Get(HeaderRequestID),
			"status", resp.StatusCode,
			"duration", time.Since(start),
		)
		return resp, nil
	})
}
