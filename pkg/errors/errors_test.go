package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "internal server error", err.Message)
}

func TestCloneKeepsCodeForIs(t *testing.T) {
	cloned := Clone(ErrForbidden, "Your department (Road) cannot update Water reports")
	wrapped := fmt.Errorf("update: %w", cloned)

	assert.True(t, errors.Is(wrapped, ErrForbidden))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "Not authorized", ErrForbidden.Message)
}

func TestErrorJSONShape(t *testing.T) {
	body, err := json.Marshal(Clone(ErrConflict, "already resolved"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"CONFLICT","detail":"already resolved"}`, string(body))
}
