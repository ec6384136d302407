package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/amishk599/scgen/internal/model"
)

// GeminiProvider serves the same chat contract through the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini-backed provider. baseURL may be empty to
// use the public endpoint.
func NewGeminiProvider(ctx context.Context, apiKey, modelName, baseURL string, httpClient *http.Client) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: modelName}, nil
}

// Complete sends prompt with the fixed system instruction and returns the
// text of the first candidate.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := float32(Temperature)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   MaxTokens,
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", geminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &model.UpstreamError{Message: "llm returned no candidates"}
	}
	return resp.Text(), nil
}

// geminiError keeps the API's own status and message when the SDK reports one.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &model.UpstreamError{StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &model.UpstreamError{StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	return &model.UpstreamError{Err: fmt.Errorf("gemini request: %w", err)}
}
