package reqctx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestContext(t *testing.T) {
	ctx := WithRequestContext(context.Background(), "https://example.com")
	rc := GetRequestContext(ctx)

	if len(rc.RequestID) != 16 {
		t.Errorf("expected 16 hex chars, got %q", rc.RequestID)
	}
	if rc.URL != "https://example.com" {
		t.Errorf("unexpected URL %q", rc.URL)
	}

	other := GetRequestContext(WithRequestContext(context.Background(), "https://example.com"))
	if other.RequestID == rc.RequestID {
		t.Error("expected distinct request IDs")
	}

	if GetRequestContext(context.Background()).RequestID != "unknown" {
		t.Error("expected placeholder ID without a request")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithRequestContext(context.Background(), "https://example.com")
	logger := Logger(ctx, base)
	logger.Info().Msg("hello")

	id := GetRequestContext(ctx).RequestID
	if !strings.Contains(buf.String(), `"request_id":"`+id+`"`) {
		t.Errorf("expected request_id in log line, got %s", buf.String())
	}

	buf.Reset()
	plain := Logger(context.Background(), base)
	plain.Info().Msg("hello")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id without a request: %s", buf.String())
	}
}

func TestRequestError(t *testing.T) {
	cause := errors.New("boom")
	ctx := WithRequestContext(context.Background(), "https://example.com/a")
	err := NewRequestError(ctx, cause)

	if !errors.Is(err, cause) {
		t.Error("expected RequestError to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "https://example.com/a") {
		t.Errorf("expected URL in message, got %q", err.Error())
	}
}
