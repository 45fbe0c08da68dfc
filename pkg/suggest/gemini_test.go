package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptCarriesReportDetails(t *testing.T) {
	p := Prompt(Issue{Tag: "Road", Location: "5th Ave", Description: "deep pothole"})
	assert.Contains(t, p, "Category (Tag): Road\n")
	assert.Contains(t, p, "Location: 5th Ave\n")
	assert.Contains(t, p, "Description: deep pothole\n")
	assert.Contains(t, p, "2. Which department or authority should be contacted.")
}

func TestSuggestReturnsFirstCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash-001:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var body generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 0.7, body.GenerationConfig.Temperature)
		require.Len(t, body.Contents, 1)
		assert.Contains(t, body.Contents[0].Parts[0].Text, "deep pothole")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"## Plan\n1. Patch it"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/models", "gemini-1.5-flash-001", "secret", 0.7, time.Second)
	text, err := c.Suggest(context.Background(), Issue{Tag: "Road", Description: "deep pothole"})
	require.NoError(t, err)
	assert.Equal(t, "## Plan\n1. Patch it", text)
}

func TestSuggestNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL, "m", "k", 0.7, time.Second).Suggest(context.Background(), Issue{})
	require.NoError(t, err)
	assert.Equal(t, NoSuggestion, text)
}

func TestSuggestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "m", "k", 0.7, time.Second).Suggest(context.Background(), Issue{})
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "API key not valid")
}
