package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch_Success(t *testing.T) {
	content := "<html><body>hello</body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "Test/1.0" {
			t.Errorf("expected user agent Test/1.0, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(content))
	}))
	defer server.Close()

	f := New(nil, Options{Timeout: 5 * time.Second, UserAgent: "Test/1.0"})
	result, err := f.Fetch(context.Background(), server.URL+"/page.html")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if string(result.Body) != content {
		t.Errorf("Content mismatch: got %q, want %q", string(result.Body), content)
	}
	if result.ContentType != "text/html" {
		t.Errorf("expected content type text/html, got %q", result.ContentType)
	}
}

func TestFetch_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := New(nil, Options{Timeout: 5 * time.Second})
	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 503")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if StatusCode(err) != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", StatusCode(err))
	}
	if !strings.Contains(httpErr.Message, "gone fishing") {
		t.Errorf("expected body snippet in message, got %q", httpErr.Message)
	}
}

func TestFetch_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	f := New(nil, Options{MaxBytes: 100})
	_, err := f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer server.Close()

	f := New(nil, Options{Timeout: 20 * time.Millisecond})
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := New(nil, Options{})
	if _, err := f.Fetch(context.Background(), "not a url"); err == nil {
		t.Fatal("expected error for invalid URL")
	}
	if StatusCode(errors.New("plain")) != 0 {
		t.Error("expected 0 status for non-HTTP error")
	}
}
