package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

func TestHistoryDeleteRejectsHandledReportsLocally(t *testing.T) {
	api := newFakeAPI(t)
	api.seed(1, models.TagRoad, models.StatusInProgress)
	api.seed(1, models.TagRoad, models.StatusResolved)
	api.seed(1, models.TagRoad, models.StatusSubmitted)

	history := NewHistory(api.client(t, "citizen"))
	ctx := context.Background()
	require.NoError(t, history.Load(ctx))
	require.Len(t, history.Reports(), 3)

	before := api.callCount()
	assert.ErrorIs(t, history.Delete(ctx, "r-001"), ErrConflict)
	assert.ErrorIs(t, history.Delete(ctx, "r-002"), ErrDeleteNotAllowed)
	assert.ErrorIs(t, history.Delete(ctx, "r-404"), ErrNotFound)
	assert.Equal(t, before, api.callCount())

	require.NoError(t, history.Delete(ctx, "r-003"))
	assert.Equal(t, before+1, api.callCount())
	assert.Equal(t, []string{"r-002", "r-001"}, idsOf(history.Reports()))
}
