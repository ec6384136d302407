package ai

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

// OpenAIProvider calls the OpenAI /v1/chat/completions endpoint.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider targeting an OpenAI-compatible API.
func NewOpenAIProvider(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

// chatRequest mirrors the OpenAI /v1/chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// chatResponse mirrors the relevant fields of the OpenAI response.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

// Complete sends prompt as the only user message and returns the first
// choice's content. A null content is returned as "".
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &model.UpstreamError{Err: fmt.Errorf("llm request: %w", err)}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &model.UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read llm response: %w", err)}
	}

	var chatResp chatResponse
	parseErr := json.Unmarshal(respBytes, &chatResp)

	if resp.StatusCode != http.StatusOK {
		upErr := &model.UpstreamError{StatusCode: resp.StatusCode}
		if parseErr == nil && chatResp.Error != nil {
			upErr.Message = chatResp.Error.Message
		} else {
			upErr.Err = fmt.Errorf("llm returned HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200))
		}
		return "", upErr
	}

	if parseErr != nil {
		return "", &model.UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("parse llm response: %w", parseErr)}
	}

	if chatResp.Error != nil {
		return "", &model.UpstreamError{StatusCode: resp.StatusCode, Message: chatResp.Error.Message}
	}

	if len(chatResp.Choices) == 0 {
		return "", &model.UpstreamError{StatusCode: resp.StatusCode, Message: "llm returned no choices"}
	}

	content := chatResp.Choices[0].Message.Content
	if content == nil {
		return "", nil
	}
	return *content, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
