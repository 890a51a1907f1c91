package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGenerateTextRequiresAPIKey(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if _, err := c.GenerateText(context.Background(), TextRequest{Prompt: "hi"}); err == nil {
		t.Fatal("GenerateText without api key should fail")
	}
}

func TestGenerateTextReturnsFirstCandidate(t *testing.T) {
	var captured *http.Request
	var capturedBody []byte
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		capturedBody, _ = io.ReadAll(req.Body)
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  Generated copy.  "}]}}]}`), nil
	})}
	c, err := NewClient(Options{APIKey: "test-key", Model: "gemini-test", HTTPClient: httpClient})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	text, err := c.GenerateText(context.Background(), TextRequest{System: "be brief", Prompt: "write copy"})
	if err != nil {
		t.Fatalf("GenerateText error: %v", err)
	}
	if text != "Generated copy." {
		t.Fatalf("text = %q, want trimmed candidate text", text)
	}
	if captured == nil {
		t.Fatal("no request was issued")
	}
	if !strings.Contains(captured.URL.Path, "gemini-test:generateContent") {
		t.Fatalf("path = %q, want model generateContent endpoint", captured.URL.Path)
	}
	if captured.URL.Query().Get("key") != "test-key" {
		t.Fatal("api key missing from query")
	}

	var payload geminiGenerateContentRequest
	if err := json.NewDecoder(bytes.NewReader(capturedBody)).Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Contents) != 2 {
		t.Fatalf("len(Contents) = %d, want system plus prompt", len(payload.Contents))
	}
}

func TestGenerateTextPropagatesAPIError(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota exceeded"}}`), nil
	})}
	c, _ := NewClient(Options{APIKey: "test-key", HTTPClient: httpClient})

	_, err := c.GenerateText(context.Background(), TextRequest{Prompt: "write copy"})
	if err == nil {
		t.Fatal("GenerateText should surface the API error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error = %v, want API message included", err)
	}
}

func TestGenerateTextEmptyCompletion(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`), nil
	})}
	c, _ := NewClient(Options{APIKey: "test-key", HTTPClient: httpClient})

	if _, err := c.GenerateText(context.Background(), TextRequest{Prompt: "write copy"}); err == nil {
		t.Fatal("GenerateText should fail on a blank completion")
	}
}

func TestGenerateImagesUnconfiguredReturnsPlaceholders(t *testing.T) {
	c, _ := NewClient(Options{})

	refs, err := c.GenerateImages(context.Background(), ImageRequest{Label: "summer sale", Quantity: 2})
	if err != nil {
		t.Fatalf("GenerateImages error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}
	for _, ref := range refs {
		if !strings.HasPrefix(ref, "https://placehold.co/") {
			t.Fatalf("ref = %q, want placeholder URL", ref)
		}
		if !strings.Contains(ref, "summer+sale") {
			t.Fatalf("ref = %q, want label embedded", ref)
		}
	}
	if refs[0] == refs[1] {
		t.Fatal("placeholder refs should be numbered when quantity > 1")
	}
}

func TestGenerateImagesFallsBackOnRemoteFailure(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"error":{"message":"boom"}}`), nil
	})}
	c, _ := NewClient(Options{APIKey: "test-key", HTTPClient: httpClient})

	refs, err := c.GenerateImages(context.Background(), ImageRequest{Label: "launch", Quantity: 1})
	if err != nil {
		t.Fatalf("GenerateImages error: %v", err)
	}
	if len(refs) != 1 || !strings.HasPrefix(refs[0], "https://placehold.co/") {
		t.Fatalf("refs = %v, want one placeholder", refs)
	}
}

func TestGenerateImagesUsesRemoteFileURIs(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"fileData":{"mimeType":"image/png","fileUri":"https://files.example/a.png"}}]}}]}`), nil
	})}
	c, _ := NewClient(Options{APIKey: "test-key", HTTPClient: httpClient})

	refs, err := c.GenerateImages(context.Background(), ImageRequest{Label: "launch", Quantity: 1})
	if err != nil {
		t.Fatalf("GenerateImages error: %v", err)
	}
	if len(refs) != 1 || refs[0] != "https://files.example/a.png" {
		t.Fatalf("refs = %v, want remote file uri", refs)
	}
}

func TestClampQuantity(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{4, 4},
		{9, MaxImagesPerCall},
	}
	for _, tc := range cases {
		if got := clampQuantity(tc.in); got != tc.want {
			t.Fatalf("clampQuantity(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
