package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/pkg/cache"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
)

const dashboardZoneLimit = 10

type dashboardRepository interface {
	CountByStatus(ctx context.Context) ([]models.CountRow, error)
	CountByTag(ctx context.Context) ([]models.CountRow, error)
	TopZones(ctx context.Context, limit int) ([]models.ZoneCount, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// DashboardService aggregates report statistics for admins.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(repo dashboardRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Stats returns the dashboard summary.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	key := cache.Key(dashboardCacheScope, "stats")
	var cached models.DashboardStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}
	byTag, err := s.repo.CountByTag(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}
	zones, err := s.repo.TopZones(ctx, dashboardZoneLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	newToday, err := s.repo.CountSince(ctx, midnight)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}

	stats := &models.DashboardStats{
		NewToday: newToday,
		ByTag:    make(map[string]int, len(models.AllTags)),
		ByZone:   zones,
	}
	if stats.ByZone == nil {
		stats.ByZone = []models.ZoneCount{}
	}
	for _, row := range byStatus {
		stats.Total += row.Count
		switch models.ReportStatus(row.Key) {
		case models.StatusSubmitted:
			stats.Submitted = row.Count
		case models.StatusInProgress:
			stats.InProgress = row.Count
		case models.StatusResolved:
			stats.Resolved = row.Count
		}
	}
	for _, tag := range models.AllTags {
		stats.ByTag[tag.String()] = 0
	}
	for _, row := range byTag {
		stats.ByTag[row.Key] += row.Count
	}

	s.cache.Set(ctx, key, stats, s.ttl)
	return stats, nil
}
