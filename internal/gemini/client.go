// Package gemini is a minimal client for the Gemini generateContent
// REST API. Callers treat every failure as a degraded feature, never a
// fatal error, so the client only reports errors and leaves fallback
// text to the feature that owns it.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Model is the text model used for all completions
const Model = "gemini-2.5-flash"

// ImageModel is the model used for image generation
const ImageModel = "gemini-2.5-flash-image"

// Client calls the Gemini REST API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Gemini client. An empty API key produces a
// disabled client whose calls fail fast.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Complete sends a prompt and returns the model's text response
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generateText(ctx, prompt, "")
}

// CompleteJSON sends a prompt requesting a JSON response body. Callers
// must still tolerate free-text output from models that ignore the
// response MIME type.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return c.generateText(ctx, prompt, "application/json")
}

// CompleteImage sends a prompt to the image model and returns the
// generated image bytes with their MIME type
func (c *Client) CompleteImage(ctx context.Context, prompt string) ([]byte, string, error) {
	parts, err := c.generate(ctx, ImageModel, prompt, "")
	if err != nil {
		return nil, "", err
	}
	for _, p := range parts {
		if p.InlineData == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode image data: %w", err)
		}
		mimeType := p.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return data, mimeType, nil
	}
	return nil, "", fmt.Errorf("no image in completion response")
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64-encoded
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generateText(ctx context.Context, prompt, responseMIMEType string) (string, error) {
	parts, err := c.generate(ctx, Model, prompt, responseMIMEType)
	if err != nil {
		return "", err
	}
	return parts[0].Text, nil
}

func (c *Client) generate(ctx context.Context, model, prompt, responseMIMEType string) ([]part, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if responseMIMEType != "" {
		reqBody.GenerationConfig = &generationConfig{ResponseMIMEType: responseMIMEType}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	return decoded.Candidates[0].Content.Parts, nil
}
