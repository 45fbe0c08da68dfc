package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/internal/service"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
)

type profileServiceMock struct {
	req     dto.CompleteProfileRequest
	picture *service.Upload
	err     error
}

func (m *profileServiceMock) Complete(ctx context.Context, actor *models.Principal, req dto.CompleteProfileRequest, picture *service.Upload, meta service.RequestMeta) (*dto.CompleteProfileResponse, error) {
	m.req = req
	m.picture = picture
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CompleteProfileResponse{Message: "Profile completed successfully", ProfileComplete: true, Role: req.Role}, nil
}

func TestProfileHandlerCompleteAdminFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &profileServiceMock{}
	handler := NewProfileHandler(mockSvc, 1<<20)

	c, w := newMultipartContext(t, http.MethodPut, "/complete-profile", map[string]string{
		"full_name":  "Asha Rao",
		"phone":      "555-0100",
		"role":       "Admin",
		"department": "Roadworks",
		"location":   "Ward 12",
		"admin_code": "letmein",
	}, formFile{field: "profile_pic", filename: "me.jpg", contentType: "image/jpeg", data: []byte("jpeg")})
	withPrincipal(c, &models.Principal{UserID: "u1"})
	handler.Complete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ward 12", mockSvc.req.Zone)
	assert.Equal(t, "Roadworks", mockSvc.req.Department)
	require.NotNil(t, mockSvc.picture)
	assert.Equal(t, "me.jpg", mockSvc.picture.Filename)
}

func TestProfileHandlerCompleteWithoutPicture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &profileServiceMock{}
	handler := NewProfileHandler(mockSvc, 0)

	c, w := newMultipartContext(t, http.MethodPut, "/complete-profile", map[string]string{"full_name": "Asha", "phone": "1"})
	withPrincipal(c, &models.Principal{UserID: "u1"})
	handler.Complete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mockSvc.picture)
}

func TestProfileHandlerCompleteConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProfileHandler(&profileServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "Profile already completed")}, 0)

	c, w := newMultipartContext(t, http.MethodPut, "/complete-profile", map[string]string{"full_name": "Asha", "phone": "1"})
	withPrincipal(c, &models.Principal{UserID: "u1"})
	handler.Complete(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"detail":"Profile already completed","code":"CONFLICT"}`, w.Body.String())
}
