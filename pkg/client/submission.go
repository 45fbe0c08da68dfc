package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
)

// Status lines shown by the submission form.
const (
	SubmitSucceeded = "Your issue has been reported!"
	SubmitFailed    = "Something went wrong. Please try again."
	LocateFailed    = "Failed to get location."
	GeocodeFailed   = "Failed to fetch location."
)

// ErrSubmissionInFlight is returned while a previous submission is running.
var ErrSubmissionInFlight = errors.New("client: submission already in flight")

// ReportDraft holds the values of the report form.
type ReportDraft struct {
	Image       *File
	Location    string
	Description string
	Tag         models.Tag
}

// Validate checks the draft locally. It returns a ValidationRejected error.
func (d ReportDraft) Validate() error {
	if d.Image.Empty() {
		return localError(KindValidationRejected, "Please select an image.")
	}
	if !isImage(d.Image) {
		return localError(KindValidationRejected, "The selected file is not an image.")
	}
	if strings.TrimSpace(d.Location) == "" {
		return localError(KindValidationRejected, "Location is required.")
	}
	if _, err := models.ParseTag(d.Tag.String()); err != nil {
		return &Error{Kind: KindValidationRejected, Detail: "Please select a valid category.", Err: err}
	}
	return nil
}

func isImage(f *File) bool {
	contentType := f.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(f.Data)
	}
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}

type reportSubmitter interface {
	SubmitReport(ctx context.Context, r NewReport) (*dto.SubmitReportResponse, error)
}

type reverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Coordinates is a device position.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Locator reads the device position.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (Coordinates, error)

// Locate implements Locator.
func (f LocatorFunc) Locate(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// SubmissionForm is the citizen report form. At most one submission runs at
// a time.
type SubmissionForm struct {
	mu       sync.Mutex
	api      reportSubmitter
	geo      reverseGeocoder
	draft    ReportDraft
	status   string
	inFlight bool
}

// NewSubmissionForm builds an empty form.
func NewSubmissionForm(api reportSubmitter, geo reverseGeocoder) *SubmissionForm {
	return &SubmissionForm{api: api, geo: geo}
}

// Draft returns the current values.
func (s *SubmissionForm) Draft() ReportDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Edit changes the current values.
func (s *SubmissionForm) Edit(fn func(d *ReportDraft)) {
	s.mu.Lock()
	fn(&s.draft)
	s.mu.Unlock()
}

// Status is the status line of the last action.
func (s *SubmissionForm) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Submitting reports whether a submission is in flight.
func (s *SubmissionForm) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Validate checks the current values without submitting.
func (s *SubmissionForm) Validate() error {
	return s.Draft().Validate()
}

// Submit validates and sends the report. Success clears the form.
func (s *SubmissionForm) Submit(ctx context.Context) (*dto.SubmitReportResponse, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	draft := s.draft
	if err := draft.Validate(); err != nil {
		s.status = DetailOr(err, SubmitFailed)
		s.mu.Unlock()
		return nil, err
	}
	tag, _ := models.ParseTag(draft.Tag.String())
	s.inFlight = true
	s.status = ""
	s.mu.Unlock()

	res, err := s.api.SubmitReport(ctx, NewReport{
		Image:       draft.Image,
		Location:    strings.TrimSpace(draft.Location),
		Description: strings.TrimSpace(draft.Description),
		Tag:         tag,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		s.status = SubmitFailed
		if errors.Is(err, ErrUnauthenticated) {
			s.status = DetailOr(err, SubmitFailed)
		}
		return nil, err
	}
	s.draft = ReportDraft{}
	s.status = SubmitSucceeded
	return res, nil
}

// AutoDetectLocation fills the location from the device position. A locator
// failure never reaches the server.
func (s *SubmissionForm) AutoDetectLocation(ctx context.Context, locator Locator) error {
	pos, err := locator.Locate(ctx)
	if err != nil {
		s.setStatus(LocateFailed)
		return &Error{Kind: KindRequestFailed, Detail: LocateFailed, Err: err}
	}
	label, err := s.geo.ReverseGeocode(ctx, pos.Lat, pos.Lng)
	if err != nil {
		s.setStatus(GeocodeFailed)
		return err
	}
	s.mu.Lock()
	s.draft.Location = label
	s.status = ""
	s.mu.Unlock()
	return nil
}

func (s *SubmissionForm) setStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}
