package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/response"
)

type suggestionService interface {
	Suggest(ctx context.Context, req dto.SuggestionRequest) (*dto.SuggestionResponse, error)
}

// SuggestionHandler returns AI remediation advice for a report.
type SuggestionHandler struct {
	service suggestionService
}

// NewSuggestionHandler constructs a SuggestionHandler.
func NewSuggestionHandler(svc suggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: svc}
}

// Suggest godoc
// @Summary Suggest how to resolve a report
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param payload body dto.SuggestionRequest true "Report summary"
// @Success 200 {object} dto.SuggestionResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 502 {object} response.ErrorBody
// @Router /suggestion [post]
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req dto.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}
	res, err := h.service.Suggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}
