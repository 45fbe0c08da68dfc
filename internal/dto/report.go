package dto

import "github.com/noah-isme/streetvoice-api/internal/models"

// SubmitReportRequest is bound from the multipart form of POST /report-issue.
type SubmitReportRequest struct {
	Location    string `form:"location" validate:"required,max=255"`
	Description string `form:"description" validate:"max=4000"`
	Tag         string `form:"tags" validate:"required"`
}

// SubmitReportResponse is returned after a report is stored.
type SubmitReportResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
	ID       string `json:"id"`
}

// ListReportsQuery captures GET /all-reports query parameters.
type ListReportsQuery struct {
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1"`
	Search string `form:"search" validate:"omitempty,max=200"`
	Status string `form:"status"`
	Tag    string `form:"tag"`
	Date   string `form:"date"`
}

// MyReportsResponse wraps the caller's own reports.
type MyReportsResponse struct {
	Reports []models.Report `json:"reports"`
}

// UpdateStatusRequest captures PUT /update-report-status/{id} payload.
type UpdateStatusRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
}

// UpdateStatusResponse acknowledges a status change.
type UpdateStatusResponse struct {
	Message string              `json:"message"`
	Status  models.ReportStatus `json:"status"`
}
