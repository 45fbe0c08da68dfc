package client

import (
	"context"
	"sync"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

const suggestionFailed = "Failed to fetch suggestion."

type suggester interface {
	Suggest(ctx context.Context, report models.Report) (string, error)
}

// Advisor fetches remediation advice for reports, one request per report at
// a time.
type Advisor struct {
	mu      sync.Mutex
	api     suggester
	notices *Notices
	loading map[string]bool
	advice  map[string]string
}

// NewAdvisor builds an Advisor posting failures to notices.
func NewAdvisor(api suggester, notices *Notices) *Advisor {
	return &Advisor{
		api:     api,
		notices: notices,
		loading: make(map[string]bool),
		advice:  make(map[string]string),
	}
}

// Fetch returns markdown advice for report.
func (a *Advisor) Fetch(ctx context.Context, report models.Report) (string, error) {
	a.mu.Lock()
	if a.loading[report.ID] {
		a.mu.Unlock()
		return "", ErrFetchInFlight
	}
	a.loading[report.ID] = true
	a.mu.Unlock()

	text, err := a.api.Suggest(ctx, report)

	a.mu.Lock()
	delete(a.loading, report.ID)
	if err == nil {
		a.advice[report.ID] = text
	}
	a.mu.Unlock()

	if err != nil {
		a.notices.Failure(err, suggestionFailed)
		return "", err
	}
	return text, nil
}

// Loading reports whether advice for id is being fetched.
func (a *Advisor) Loading(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading[id]
}

// Advice returns the last advice fetched for id.
func (a *Advisor) Advice(id string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	text, ok := a.advice[id]
	return text, ok
}
