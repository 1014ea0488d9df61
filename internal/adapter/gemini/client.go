// Package gemini calls the Google Generative Language API for the two
// text-analysis capabilities the service needs: pulling a place name out of
// a free-text disaster description, and producing an image-verification
// verdict.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// noResult is returned by AnalyzeImage when the service produces no usable
// content, so callers always have a verdict to cache and display.
const noResult = "No result"

// Client implements domain.LocationExtractor and domain.ImageAnalyzer.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Generative Language API client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent",
		logger:  logger,
	}
}

// ExtractLocation asks the model for the place name mentioned in the
// description. An empty result with a nil error means the model produced no
// usable text; callers decide how to surface that.
func (c *Client) ExtractLocation(ctx context.Context, description string) (string, error) {
	prompt := fmt.Sprintf("Extract location from: %s", description)
	return c.generate(ctx, prompt)
}

// AnalyzeImage submits the image reference and analysis prompt and returns
// the model's free-text verdict, falling back to "No result".
func (c *Client) AnalyzeImage(ctx context.Context, _ string, prompt string) (string, error) {
	verdict, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if verdict == "" {
		return noResult, nil
	}
	return verdict, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := request{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	u := c.baseURL + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generative API error: status %d: %s", resp.StatusCode, respBody)
	}

	var genResp response
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text), nil
}

// Generative Language API request/response types.

type request struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type response struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}
