package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/streetvoice-api/internal/service"
	"github.com/noah-isme/streetvoice-api/pkg/geocode"
	"github.com/noah-isme/streetvoice-api/pkg/response"
)

type locationService interface {
	Reverse(ctx context.Context, lat, lng string) (*geocode.Response, error)
}

// LocationHandler proxies reverse geocoding so the provider key stays on
// the server.
type LocationHandler struct {
	service locationService
}

// NewLocationHandler constructs a LocationHandler.
func NewLocationHandler(svc locationService) *LocationHandler {
	return &LocationHandler{service: svc}
}

// Reverse godoc
// @Summary Reverse geocode coordinates
// @Description The provider answer is forwarded unchanged, including its status code.
// @Tags Location
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} object
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} object
// @Router /api/get-location [get]
func (h *LocationHandler) Reverse(c *gin.Context) {
	res, err := h.service.Reverse(c.Request.Context(), c.Query("lat"), c.Query("lng"))
	if err != nil {
		if errors.Is(err, service.ErrGeocodeTransport) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch location"})
			return
		}
		response.Error(c, err)
		return
	}
	contentType := res.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(res.Status, contentType, res.Body)
}
