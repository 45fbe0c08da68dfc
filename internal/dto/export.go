package dto

import (
	"time"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
	Status string `json:"status,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

// ExportJobResponse exposes job progress metadata.
type ExportJobResponse struct {
	ID          string              `json:"id"`
	Format      models.ExportFormat `json:"format"`
	Status      models.ExportStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
	DownloadURL *string             `json:"download_url,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
	Error       *string             `json:"error,omitempty"`
}
