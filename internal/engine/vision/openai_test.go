package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func TestOpenAIClient_Describe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected auth header, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-test" || req.MaxTokens != 300 {
			t.Errorf("unexpected model/max_tokens %q/%d", req.Model, req.MaxTokens)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Fatalf("expected one user message, got %+v", req.Messages)
		}
		parts := req.Messages[0].Content
		if len(parts) != 2 || parts[0].Type != "text" || parts[1].Type != "image_url" {
			t.Fatalf("expected text and image parts, got %+v", parts)
		}
		if parts[0].Text != "What is shown?" {
			t.Errorf("unexpected prompt %q", parts[0].Text)
		}
		if parts[1].ImageURL.URL != "data:image/jpeg;base64,/9j/" {
			t.Errorf("unexpected image url %q", parts[1].ImageURL.URL)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","model":"gpt-test","choices":[{"index":0,"message":{"role":"assistant","content":"A header with a logo."},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.Client(), nil, OpenAIConfig{
		APIURL:  server.URL + "/v1/",
		APIKey:  "test-key",
		Model:   "gpt-test",
		Timeout: 5 * time.Second,
	})

	got, err := client.Describe(context.Background(), "What is shown?", []byte{0xff, 0xd8, 0xff})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if got != "A header with a logo." {
		t.Errorf("unexpected answer %q", got)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(nil, nil, OpenAIConfig{APIURL: server.URL, APIKey: "k"})
	got, err := client.Describe(context.Background(), "q", []byte{1})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty answer, got %q", got)
	}
}

func TestOpenAIClient_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"image too large","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(nil, nil, OpenAIConfig{APIURL: server.URL, APIKey: "k"})
	_, err := client.Describe(context.Background(), "q", []byte{1})
	if err == nil || !strings.Contains(err.Error(), "image too large") {
		t.Fatalf("expected service error to surface, got %v", err)
	}
	if client.Model() != DefaultModel {
		t.Errorf("expected default model, got %q", client.Model())
	}
}
