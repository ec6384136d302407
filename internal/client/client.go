// Package client calls the generation endpoint on behalf of the form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/amishk599/scgen/internal/model"
)

// GeneratePath is the generation endpoint route.
const GeneratePath = "/api/generate"

// previewLimit bounds the raw-body prefix carried by a ParseError.
const previewLimit = 100

// Client posts prompts to a running generation endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the endpoint served at baseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// generateResponse covers both the success and the failure body.
type generateResponse struct {
	Content string `json:"content"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Generate sends one POST with {prompt} and returns the content verbatim.
//
// The body is read as text first. If it is not the expected JSON object the
// error is a *model.ParseError with a bounded preview, regardless of status.
// A parsed non-2xx body yields a *model.APIError carrying the server's error
// text (possibly empty).
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GeneratePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}

	var data generateResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", &model.ParseError{Preview: Preview(string(raw)), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &model.APIError{StatusCode: resp.StatusCode, Message: data.Error}
	}

	return data.Content, nil
}

// Preview returns at most the first 100 characters of s.
func Preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLimit {
		return s
	}
	return string(r[:previewLimit])
}
