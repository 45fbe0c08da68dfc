package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/internal/service"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/response"
)

type profileService interface {
	Complete(ctx context.Context, actor *models.Principal, req dto.CompleteProfileRequest, picture *service.Upload, meta service.RequestMeta) (*dto.CompleteProfileResponse, error)
}

// ProfileHandler serves profile completion.
type ProfileHandler struct {
	service  profileService
	maxBytes int64
}

// NewProfileHandler constructs a ProfileHandler. maxBytes bounds the
// multipart body.
func NewProfileHandler(svc profileService, maxBytes int64) *ProfileHandler {
	return &ProfileHandler{service: svc, maxBytes: maxBytes}
}

// Complete godoc
// @Summary Complete the caller's profile
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param full_name formData string true "Full name"
// @Param phone formData string true "Phone"
// @Param role formData string false "User or Admin"
// @Param department formData string false "Department (Admin)"
// @Param location formData string false "Zone (Admin)"
// @Param admin_code formData string false "Admin signup code"
// @Param profile_pic formData file false "Profile picture"
// @Success 200 {object} dto.CompleteProfileResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /complete-profile [put]
func (h *ProfileHandler) Complete(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	limitBody(c, h.maxBytes)

	var req dto.CompleteProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid profile payload"))
		return
	}
	picture, err := optionalUpload(c, "profile_pic")
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Complete(c.Request.Context(), principal, req, picture, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}
