package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NoSuggestion is returned as the text when the model produced no candidates.
const NoSuggestion = "No suggestion returned by the model."

// ErrUpstream wraps non-2xx answers from the generator.
var ErrUpstream = errors.New("suggestion provider error")

// Issue is the report context a suggestion is generated for.
type Issue struct {
	Tag         string
	Location    string
	Description string
}

// Client generates maintenance suggestions through the Gemini generateContent API.
type Client struct {
	baseURL     string
	model       string
	apiKey      string
	temperature float64
	http        *http.Client
}

// NewClient builds a Gemini client. baseURL is the models collection URL.
func NewClient(baseURL, model, apiKey string, temperature float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		apiKey:      apiKey,
		temperature: temperature,
		http:        &http.Client{Timeout: timeout},
	}
}

// Prompt renders the maintenance-assistant prompt for an issue.
func Prompt(issue Issue) string {
	var b strings.Builder
	b.WriteString("You are an expert city maintenance assistant helping municipal admins solve public infrastructure issues efficiently.\n\n")
	b.WriteString("Based on the following citizen report, provide a practical step-by-step solution plan to resolve the issue. Include:\n")
	b.WriteString("1. Recommended actions.\n")
	b.WriteString("2. Which department or authority should be contacted.\n")
	b.WriteString("3. Estimated time for resolution.\n")
	b.WriteString("4. Any preventive measures for the future.\n\n")
	b.WriteString("Report Details:\n")
	fmt.Fprintf(&b, "Category (Tag): %s\n", issue.Tag)
	fmt.Fprintf(&b, "Location: %s\n", issue.Location)
	fmt.Fprintf(&b, "Description: %s\n\n", issue.Description)
	b.WriteString("Please give a short, concise and actionable suggestion in 200 words")
	return b.String()
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Suggest returns markdown text for the issue.
func (c *Client) Suggest(ctx context.Context, issue Issue) (string, error) {
	payload := generateRequest{Contents: []content{{Parts: []part{{Text: Prompt(issue)}}}}}
	payload.GenerationConfig.Temperature = c.temperature
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode suggestion request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build suggestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("suggestion request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read suggestion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(decoded.Candidates) == 0 {
		return NoSuggestion, nil
	}
	parts := decoded.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0].Text, nil
}
