package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/scgen/internal/config"
	"github.com/amishk599/scgen/internal/model"
)

func makeTestServer(t *testing.T, statusCode int, body any) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, srv.Client()
}

func contentResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
			map[string]any{"message": map[string]any{"role": "assistant", "content": "second choice"}},
		},
	}
}

func TestComplete_Success(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, contentResponse("I led a team of five."))

	provider := NewOpenAIProvider(srv.URL, "test-key", "gpt-4", client)
	got, err := provider.Complete(context.Background(), "write it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "I led a team of five." {
		t.Errorf("got %q, want first choice content", got)
	}
}

func TestComplete_NullContentIsEmpty(t *testing.T) {
	body := map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": nil}}},
	}
	srv, client := makeTestServer(t, http.StatusOK, body)

	provider := NewOpenAIProvider(srv.URL, "test-key", "gpt-4", client)
	got, err := provider.Complete(context.Background(), "write it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestComplete_ProviderErrorMessagePreserved(t *testing.T) {
	body := map[string]any{
		"error": map[string]any{"message": "Incorrect API key provided", "type": "invalid_request_error"},
	}
	srv, client := makeTestServer(t, http.StatusUnauthorized, body)

	provider := NewOpenAIProvider(srv.URL, "bad-key", "gpt-4", client)
	_, err := provider.Complete(context.Background(), "write it")

	var upErr *model.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want *model.UpstreamError", err)
	}
	if upErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", upErr.StatusCode)
	}
	if upErr.Message != "Incorrect API key provided" {
		t.Errorf("Message = %q", upErr.Message)
	}
}

func TestComplete_RateLimited(t *testing.T) {
	body := map[string]any{"error": map[string]any{"message": "Rate limit reached", "type": "requests"}}
	srv, client := makeTestServer(t, http.StatusTooManyRequests, body)

	provider := NewOpenAIProvider(srv.URL, "test-key", "gpt-4", client)
	_, err := provider.Complete(context.Background(), "write it")

	var upErr *model.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want *model.UpstreamError", err)
	}
	if upErr.StatusCode != http.StatusTooManyRequests || upErr.Message != "Rate limit reached" {
		t.Errorf("got %+v", upErr)
	}
}

func TestComplete_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "test-key", "gpt-4", srv.Client())
	_, err := provider.Complete(context.Background(), "write it")

	var upErr *model.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want *model.UpstreamError", err)
	}
	if upErr.Message != "" {
		t.Errorf("Message = %q, want empty for non-JSON body", upErr.Message)
	}
	if upErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", upErr.StatusCode)
	}
}

func TestComplete_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "test-key", "gpt-4", srv.Client())
	_, err := provider.Complete(context.Background(), "write it")

	var upErr *model.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want *model.UpstreamError", err)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, map[string]any{"choices": []any{}})

	provider := NewOpenAIProvider(srv.URL, "test-key", "gpt-4", client)
	_, err := provider.Complete(context.Background(), "write it")
	if err == nil {
		t.Fatal("expected error when LLM returns no choices")
	}
}

func TestComplete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	provider := NewOpenAIProvider(url, "test-key", "gpt-4", http.DefaultClient)
	_, err := provider.Complete(context.Background(), "write it")

	var upErr *model.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want *model.UpstreamError", err)
	}
	if upErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", upErr.StatusCode)
	}
}

func TestComplete_SetsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(contentResponse("ok"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "my-secret-key", "gpt-4", srv.Client())
	_, _ = provider.Complete(context.Background(), "hello")

	if gotAuth != "Bearer my-secret-key" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer my-secret-key")
	}
}

func TestComplete_SendsFixedParameters(t *testing.T) {
	var gotReq chatRequest
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(contentResponse("ok"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL+"/", "key", "gpt-4", srv.Client())
	if _, err := provider.Complete(context.Background(), "the user prompt"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if gotReq.Model != "gpt-4" {
		t.Errorf("model = %q, want gpt-4", gotReq.Model)
	}
	if gotReq.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", gotReq.Temperature)
	}
	if gotReq.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d, want 1000", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != SystemInstruction {
		t.Errorf("system message = %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != "user" || gotReq.Messages[1].Content != "the user prompt" {
		t.Errorf("user message = %+v", gotReq.Messages[1])
	}
}

func TestNewProvider_MissingKeyFailsClosed(t *testing.T) {
	_, err := NewProvider(context.Background(), config.AIConfig{Provider: config.ProviderOpenAI}, http.DefaultClient)
	if !errors.Is(err, model.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestNewProvider_SelectsOpenAI(t *testing.T) {
	p, err := NewProvider(context.Background(), config.AIConfig{
		Provider: config.ProviderOpenAI,
		BaseURL:  "https://api.openai.com/v1",
		Model:    "gpt-4",
		APIKey:   "k",
	}, http.DefaultClient)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, ok := p.(*OpenAIProvider); !ok {
		t.Errorf("provider = %T, want *OpenAIProvider", p)
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), config.AIConfig{Provider: "llama", APIKey: "k"}, http.DefaultClient)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
