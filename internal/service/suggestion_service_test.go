package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/suggest"
)

type suggesterStub struct {
	text  string
	err   error
	calls int
	last  suggest.Issue
}

func (s *suggesterStub) Suggest(ctx context.Context, issue suggest.Issue) (string, error) {
	s.calls++
	s.last = issue
	return s.text, s.err
}

func TestSuggestionServiceCachesByContent(t *testing.T) {
	client := &suggesterStub{text: "## Plan\n1. Fix it"}
	cacheSvc := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewSuggestionService(client, cacheSvc, nil, nil, nil, time.Hour)
	req := dto.SuggestionRequest{Tag: "Road", Location: " Main St ", Description: "Pothole"}

	first, err := svc.Suggest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "## Plan\n1. Fix it", first.Suggestion)
	assert.Equal(t, "Main St", client.last.Location)

	second, err := svc.Suggest(context.Background(), dto.SuggestionRequest{Tag: "Road", Location: "Main St", Description: "Pothole"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)

	_, err = svc.Suggest(context.Background(), dto.SuggestionRequest{Tag: "Road", Location: "Main St", Description: "Streetlight"})
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestSuggestionServiceDoesNotCacheEmptyAnswer(t *testing.T) {
	client := &suggesterStub{text: suggest.NoSuggestion}
	cacheSvc := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewSuggestionService(client, cacheSvc, nil, nil, nil, time.Hour)
	req := dto.SuggestionRequest{Tag: "Road", Location: "x", Description: "y"}

	resp, err := svc.Suggest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, suggest.NoSuggestion, resp.Suggestion)
	_, _ = svc.Suggest(context.Background(), req)
	assert.Equal(t, 2, client.calls)
}

func TestSuggestionServiceErrors(t *testing.T) {
	svc := NewSuggestionService(&suggesterStub{err: fmt.Errorf("%w: status 429: quota", suggest.ErrUpstream)}, nil, NewMetricsService(), nil, nil, 0)
	_, err := svc.Suggest(context.Background(), dto.SuggestionRequest{Tag: "Road", Location: "x", Description: "y"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 502, appErr.Status)
	assert.Contains(t, appErr.Message, "quota")

	svc = NewSuggestionService(&suggesterStub{err: errors.New("dial tcp: i/o timeout")}, nil, nil, nil, nil, 0)
	_, err = svc.Suggest(context.Background(), dto.SuggestionRequest{Tag: "Road", Location: "x", Description: "y"})
	assert.Equal(t, "Suggestion service unavailable", appErrors.FromError(err).Message)

	_, err = svc.Suggest(context.Background(), dto.SuggestionRequest{Tag: "Road"})
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	svc = NewSuggestionService(nil, nil, nil, nil, nil, 0)
	_, err = svc.Suggest(context.Background(), dto.SuggestionRequest{Tag: "Road", Location: "x", Description: "y"})
	assert.Equal(t, 503, appErrors.FromError(err).Status)
}
