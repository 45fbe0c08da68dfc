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

type reportService interface {
	Submit(ctx context.Context, actor *models.Principal, req dto.SubmitReportRequest, image service.Upload) (*dto.SubmitReportResponse, error)
	ListMine(ctx context.Context, actor *models.Principal) ([]models.Report, error)
	List(ctx context.Context, query dto.ListReportsQuery) (*models.ReportPage, error)
	Delete(ctx context.Context, actor *models.Principal, id string, meta service.RequestMeta) error
	UpdateStatus(ctx context.Context, actor *models.Principal, id string, req dto.UpdateStatusRequest, meta service.RequestMeta) (*dto.UpdateStatusResponse, error)
}

// ReportHandler exposes citizen and moderator report endpoints.
type ReportHandler struct {
	service  reportService
	maxBytes int64
}

// NewReportHandler constructs a ReportHandler. maxBytes bounds the image part.
func NewReportHandler(svc reportService, maxBytes int64) *ReportHandler {
	return &ReportHandler{service: svc, maxBytes: maxBytes}
}

// Submit godoc
// @Summary Submit a report
// @Description Upload a photo of a civic issue with its location and category.
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param image formData file true "Photo"
// @Param location formData string true "Location"
// @Param description formData string true "Description"
// @Param tags formData string true "Garbage, Road, Electricity, Water or Sanitation"
// @Success 200 {object} dto.SubmitReportResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 413 {object} response.ErrorBody
// @Router /report-issue [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	limitBody(c, h.maxBytes)

	var req dto.SubmitReportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "location and tags are required"))
		return
	}
	image, err := optionalUpload(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	if image == nil {
		image = &service.Upload{}
	}

	res, err := h.service.Submit(c.Request.Context(), principal, req, *image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// MyReports godoc
// @Summary List the caller's reports
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.MyReportsResponse
// @Router /my-reports [get]
func (h *ReportHandler) MyReports(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	reports, err := h.service.ListMine(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	response.JSON(c, http.StatusOK, dto.MyReportsResponse{Reports: reports})
}

// Delete godoc
// @Summary Delete one of the caller's submitted reports
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /delete-report/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), principal, c.Param("id"), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MessageResponse{Message: "Report deleted successfully"})
}

// List godoc
// @Summary List reports for moderation
// @Tags Reports
// @Produce json
// @Param page query int false "1-indexed page"
// @Param limit query int false "Page size (max 100)"
// @Param search query string false "Matches location, description or tag"
// @Param status query string false "submitted, in-progress, resolved or all"
// @Param tag query string false "Category or all"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} models.ReportPage
// @Failure 400 {object} response.ErrorBody
// @Router /all-reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	var query dto.ListReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	page, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// UpdateStatus godoc
// @Summary Move a report to a new status
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} dto.UpdateStatusResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /update-report-status/{id} [put]
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "new_status is required"))
		return
	}
	res, err := h.service.UpdateStatus(c.Request.Context(), principal, c.Param("id"), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}
