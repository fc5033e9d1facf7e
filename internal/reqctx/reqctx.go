// Package reqctx carries a per-page request ID through a crawl iteration
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type key int

const requestKey key = 0

type RequestContext struct {
	RequestID string
	URL       string
	StartTime time.Time
}

// WithRequestContext starts a new request for pageURL
func WithRequestContext(ctx context.Context, pageURL string) context.Context {
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: generateID(),
		URL:       pageURL,
		StartTime: time.Now(),
	})
}

func GetRequestContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{
		RequestID: "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns base annotated with the request ID of ctx, if any
func Logger(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	rc, ok := ctx.Value(requestKey).(*RequestContext)
	if !ok {
		return base
	}
	return base.With().Str("request_id", rc.RequestID).Logger()
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RequestError wraps an error with request context
type RequestError struct {
	RequestID string
	URL       string
	Err       error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.RequestID, e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError from context
func NewRequestError(ctx context.Context, err error) error {
	rc := GetRequestContext(ctx)
	return &RequestError{
		RequestID: rc.RequestID,
		URL:       rc.URL,
		Err:       err,
	}
}
