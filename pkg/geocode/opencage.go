package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrInvalidCoordinates is returned for latitude/longitude outside the valid range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Client performs reverse geocoding against the OpenCage JSON API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Response is the raw upstream answer, forwarded unchanged to callers.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// NewClient builds an OpenCage client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: &http.Client{Timeout: timeout}}
}

// ParseCoordinates validates raw query values.
func ParseCoordinates(lat, lng string) (float64, float64, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return 0, 0, ErrInvalidCoordinates
	}
	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil || lo < -180 || lo > 180 {
		return 0, 0, ErrInvalidCoordinates
	}
	return la, lo, nil
}

// Reverse looks up the place at lat/lng. Any upstream status is returned as
// is; only transport failures produce an error.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*Response, error) {
	q := url.Values{}
	// encodes as "lat+lng", the form OpenCage documents
	q.Set("q", fmt.Sprintf("%s %s", strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lng, 'f', -1, 64)))
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read geocode response: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	return &Response{Status: resp.StatusCode, ContentType: ct, Body: body}, nil
}

// FormattedAddress extracts results[0].formatted, the label clients display.
func FormattedAddress(body []byte) (string, bool) {
	var payload struct {
		Results []struct {
			Formatted string `json:"formatted"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	if len(payload.Results) == 0 || payload.Results[0].Formatted == "" {
		return "", false
	}
	return payload.Results[0].Formatted, true
}
