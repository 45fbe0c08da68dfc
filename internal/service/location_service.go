package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/geocode"
)

// ErrGeocodeTransport marks a reverse geocode that never got an upstream answer.
var ErrGeocodeTransport = errors.New("failed to fetch location")

type reverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*geocode.Response, error)
}

// LocationService proxies reverse geocoding for the submission form.
type LocationService struct {
	client  reverseGeocoder
	metrics *MetricsService
	logger  *zap.Logger
}

// NewLocationService constructs a LocationService.
func NewLocationService(client reverseGeocoder, metrics *MetricsService, logger *zap.Logger) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{client: client, metrics: metrics, logger: logger}
}

// Reverse returns the upstream answer for raw lat/lng query values.
func (s *LocationService) Reverse(ctx context.Context, lat, lng string) (*geocode.Response, error) {
	la, lo, err := geocode.ParseCoordinates(lat, lng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "lat and lng must be valid coordinates")
	}
	if s.client == nil {
		return nil, ErrGeocodeTransport
	}

	start := time.Now()
	resp, err := s.client.Reverse(ctx, la, lo)
	s.metrics.ObserveUpstream("opencage", err, time.Since(start))
	if err != nil {
		s.logger.Warn("reverse geocode failed", zap.Error(err))
		return nil, ErrGeocodeTransport
	}
	return resp, nil
}
