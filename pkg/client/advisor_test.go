package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

type suggesterFunc func(ctx context.Context, r models.Report) (string, error)

func (f suggesterFunc) Suggest(ctx context.Context, r models.Report) (string, error) {
	return f(ctx, r)
}

func TestAdvisorMarksLoadingPerReport(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	advisor := NewAdvisor(suggesterFunc(func(ctx context.Context, r models.Report) (string, error) {
		close(started)
		<-release
		return "## Steps\n- Fill the pothole", nil
	}), NewNotices())

	report := models.Report{ID: "r-1", Tag: models.TagRoad}
	done := make(chan error, 1)
	go func() {
		_, err := advisor.Fetch(context.Background(), report)
		done <- err
	}()
	<-started

	assert.True(t, advisor.Loading("r-1"))
	assert.False(t, advisor.Loading("r-2"))
	_, err := advisor.Fetch(context.Background(), report)
	assert.ErrorIs(t, err, ErrFetchInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, advisor.Loading("r-1"))
	text, ok := advisor.Advice("r-1")
	require.True(t, ok)
	assert.Contains(t, text, "Fill the pothole")
}

func TestAdvisorPostsFailureNotice(t *testing.T) {
	notices := NewNotices()
	advisor := NewAdvisor(suggesterFunc(func(ctx context.Context, r models.Report) (string, error) {
		return "", statusError(502, []byte(`{"detail":"model quota exceeded"}`))
	}), notices)

	_, err := advisor.Fetch(context.Background(), models.Report{ID: "r-1"})
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.False(t, advisor.Loading("r-1"))

	last, ok := notices.Last()
	require.True(t, ok)
	assert.Equal(t, NoticeError, last.Level)
	assert.Equal(t, "model quota exceeded", last.Message)
	assert.Len(t, notices.Drain(), 1)
	assert.Empty(t, notices.Drain())
}
