package chrome

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func requireChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	path := FindChrome()
	if path == "" {
		t.Skip("Chrome not installed")
	}
	return path
}

func TestCapturer_NameAndClose(t *testing.T) {
	c := New(Options{ExecPath: "/nonexistent/chrome"})
	if c.Name() != "chrome" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if c.opts.Quality != DefaultQuality {
		t.Errorf("expected default quality, got %d", c.opts.Quality)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on an unstarted capturer failed: %v", err)
	}
}

func TestCapturer_AllocatorOptions(t *testing.T) {
	base := len(New(Options{ExecPath: "/bin/chrome"}).allocatorOptions())
	full := len(New(Options{ExecPath: "/bin/chrome", UserAgent: "ua", Proxy: "http://p:8080"}).allocatorOptions())
	if full != base+2 {
		t.Errorf("expected user agent and proxy options to be added, got %d vs %d", full, base)
	}
}

func TestCapturer_Capture(t *testing.T) {
	execPath := requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Audit") != "1" {
			t.Errorf("expected extra header, got %q", r.Header.Get("X-Audit"))
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body style="height:2500px"><a href="/about">About</a></body></html>`)
	}))
	defer server.Close()

	c := New(Options{ExecPath: execPath, Timeout: 30 * time.Second, Headers: map[string]string{"X-Audit": "1"}})
	defer c.Close()

	page, err := c.Capture(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !bytes.HasPrefix(page.Screenshot.Data, []byte{0xff, 0xd8}) {
		t.Error("expected a JPEG screenshot")
	}
	if !strings.Contains(page.HTML, `href="/about"`) {
		t.Errorf("expected outer HTML, got %q", page.HTML)
	}

	if page.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", page.StatusCode)
	}

	missing, err := c.Capture(context.Background(), server.URL+"/missing")
	if err != nil {
		t.Fatalf("expected the 404 page to be captured, got %v", err)
	}
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", missing.StatusCode)
	}
	if len(missing.Screenshot.Data) == 0 {
		t.Error("expected a screenshot of the error page")
	}
}
