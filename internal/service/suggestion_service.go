package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/pkg/cache"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/suggest"
)

const suggestionCacheScope = "suggestions"

type suggester interface {
	Suggest(ctx context.Context, issue suggest.Issue) (string, error)
}

// SuggestionService produces remediation advice for a report.
type SuggestionService struct {
	client    suggester
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewSuggestionService constructs a SuggestionService. A nil client makes
// every call return 503.
func NewSuggestionService(client suggester, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SuggestionService{client: client, cache: cache, metrics: metrics, validator: validate, logger: logger, ttl: ttl}
}

// Suggest returns markdown advice for the described issue.
func (s *SuggestionService) Suggest(ctx context.Context, req dto.SuggestionRequest) (*dto.SuggestionResponse, error) {
	issue := suggest.Issue{
		Tag:         strings.TrimSpace(req.Tag),
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
	}
	req = dto.SuggestionRequest{Tag: issue.Tag, Location: issue.Location, Description: issue.Description}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "tag, location and description are required")
	}
	if s.client == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "Suggestion service is not configured")
	}

	key := cache.Key(suggestionCacheScope, cache.Fingerprint(issue.Tag, issue.Location, issue.Description))
	var cached dto.SuggestionResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	text, err := s.client.Suggest(ctx, issue)
	s.metrics.ObserveUpstream("gemini", err, time.Since(start))
	if err != nil {
		s.logger.Warn("suggestion request failed", zap.String("tag", issue.Tag), zap.Error(err))
		if errors.Is(err, suggest.ErrUpstream) {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Suggestion service unavailable")
	}

	resp := &dto.SuggestionResponse{Suggestion: text}
	if text != suggest.NoSuggestion && text != "" {
		s.cache.Set(ctx, key, resp, s.ttl)
	}
	return resp, nil
}
