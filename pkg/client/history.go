package client

import (
	"context"
	"sync"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

// ErrDeleteNotAllowed is returned for reports that are already being
// handled. Only submitted reports can be withdrawn.
var ErrDeleteNotAllowed = &Error{Kind: KindConflict, Detail: "Only submitted reports can be deleted."}

type historyAPI interface {
	MyReports(ctx context.Context) ([]models.Report, error)
	DeleteReport(ctx context.Context, id string) error
}

// History is the citizen's list of their own reports.
type History struct {
	mu      sync.Mutex
	api     historyAPI
	reports []models.Report
}

// NewHistory builds an empty History.
func NewHistory(api historyAPI) *History {
	return &History{api: api}
}

// Load replaces the list with the server's.
func (h *History) Load(ctx context.Context) error {
	reports, err := h.api.MyReports(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.reports = append([]models.Report(nil), reports...)
	h.mu.Unlock()
	return nil
}

// Reports returns a copy of the loaded reports.
func (h *History) Reports() []models.Report {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Report(nil), h.reports...)
}

// Delete withdraws report id. Reports past submitted are refused without
// contacting the server.
func (h *History) Delete(ctx context.Context, id string) error {
	h.mu.Lock()
	idx := -1
	for i, r := range h.reports {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		h.mu.Unlock()
		return localError(KindNotFound, "Report not found.")
	}
	if !h.reports[idx].Status.Deletable() {
		h.mu.Unlock()
		return ErrDeleteNotAllowed
	}
	h.mu.Unlock()

	if err := h.api.DeleteReport(ctx, id); err != nil {
		return err
	}

	h.mu.Lock()
	for i, r := range h.reports {
		if r.ID == id {
			h.reports = append(h.reports[:i], h.reports[i+1:]...)
			break
		}
	}
	h.mu.Unlock()
	return nil
}
