package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDisabledClientFailsFast(t *testing.T) {
	c := NewClient("", "http://unused", time.Second)

	if c.Enabled() {
		t.Error("expected client with no key to be disabled")
	}

	if _, err := c.Complete(context.Background(), "hello"); err == nil {
		t.Error("expected error from disabled client")
	}
}

func TestCompleteParsesCandidateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "count breath" {
			t.Errorf("prompt not carried through: %+v", req)
		}

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content struct {
					Parts []part `json:"parts"`
				} `json:"content"`
			}{
				{Content: struct {
					Parts []part `json:"parts"`
				}{Parts: []part{{Text: "one breath at a time"}}}},
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, time.Second)
	got, err := c.Complete(context.Background(), "count breath")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "one breath at a time" {
		t.Errorf("expected candidate text, got %q", got)
	}
}

func TestCompleteJSONRequestsJSONMimeType(t *testing.T) {
	var gotConfig *generationConfig
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotConfig = req.GenerationConfig
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[]"}]}}]}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, time.Second)
	if _, err := c.CompleteJSON(context.Background(), "list mantras"); err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if gotConfig == nil || gotConfig.ResponseMIMEType != "application/json" {
		t.Errorf("expected responseMimeType application/json, got %+v", gotConfig)
	}
}

func TestCompleteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, time.Second)
	if _, err := c.Complete(context.Background(), "hello"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestCompleteEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, time.Second)
	if _, err := c.Complete(context.Background(), "hello"); err == nil {
		t.Error("expected error for empty candidate list")
	}
}

func TestCompleteImageDecodesInlineData(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4e, 0x47}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ImageModel) {
			t.Errorf("expected image model in path, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": "here is your image"},
						{"inlineData": map[string]string{
							"mimeType": "image/png",
							"data":     base64.StdEncoding.EncodeToString(imageBytes),
						}},
					},
				}},
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, time.Second)
	data, mimeType, err := c.CompleteImage(context.Background(), "a poster")
	if err != nil {
		t.Fatalf("CompleteImage failed: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("expected image/png, got %q", mimeType)
	}
	if !bytes.Equal(data, imageBytes) {
		t.Errorf("image bytes not decoded: %v", data)
	}
}

func TestCompleteImageWithoutInlineData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"no image today"}]}}]}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, time.Second)
	if _, _, err := c.CompleteImage(context.Background(), "a poster"); err == nil {
		t.Error("expected error when response carries no image part")
	}
}
