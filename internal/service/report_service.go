package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/pkg/cache"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
)

const (
	reportsCacheScope   = "reports"
	dashboardCacheScope = "dashboard"
	reportImagesFolder  = "reports"
	dateLayout          = "2006-01-02"
)

type reportStore interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	ListByUser(ctx context.Context, userID string) ([]models.Report, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ReportStatus) error
	Delete(ctx context.Context, id string) error
}

type imageStore interface {
	StoreImage(ctx context.Context, folder string, upload Upload) (string, error)
	Remove(ctx context.Context, publicURL string)
}

// ReportConfig governs listing bounds and moderation rules.
type ReportConfig struct {
	Policy       models.TransitionPolicy
	DefaultLimit int
	MaxLimit     int
	ListTTL      time.Duration
}

// ReportService orchestrates citizen reports from submission to resolution.
type ReportService struct {
	repo      reportStore
	images    imageStore
	cache     *CacheService
	audit     *AuditService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    ReportConfig
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportStore, images imageStore, cache *CacheService, audit *AuditService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 20
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = 100
	}
	if config.DefaultLimit > config.MaxLimit {
		config.DefaultLimit = config.MaxLimit
	}
	if config.Policy == "" {
		config.Policy = models.PolicyPermissive
	}
	return &ReportService{
		repo:      repo,
		images:    images,
		cache:     cache,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// Submit stores a new report with its compressed image.
func (s *ReportService) Submit(ctx context.Context, actor *models.Principal, req dto.SubmitReportRequest, image Upload) (*dto.SubmitReportResponse, error) {
	req.Location = strings.TrimSpace(req.Location)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "location and tags are required")
	}
	tag, err := models.ParseTag(req.Tag)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid tag")
	}

	imageURL, err := s.images.StoreImage(ctx, reportImagesFolder, image)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ImageURL:    imageURL,
		Location:    req.Location,
		Description: req.Description,
		Tag:         tag,
		UserID:      actor.UserID,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		s.images.Remove(ctx, imageURL)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save report")
	}

	s.invalidate(ctx)
	s.metrics.RecordSubmission(tag.String())
	s.logger.Info("report submitted", zap.String("report_id", report.ID), zap.String("tag", tag.String()), zap.String("user_id", actor.UserID))

	return &dto.SubmitReportResponse{
		Message:  "Report submitted successfully",
		ImageURL: imageURL,
		ID:       report.ID,
	}, nil
}

// ListMine returns the caller's reports, newest first.
func (s *ReportService) ListMine(ctx context.Context, actor *models.Principal) ([]models.Report, error) {
	reports, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

// List returns one page of the admin listing.
func (s *ReportService) List(ctx context.Context, query dto.ListReportsQuery) (*models.ReportPage, error) {
	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, err
	}

	key := cache.Key(reportsCacheScope, "list", filterFingerprint(filter))
	var cached models.ReportPage
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	if reports == nil {
		reports = []models.Report{}
	}

	page := &models.ReportPage{
		Reports: reports,
		Page:    filter.Page,
		Limit:   filter.Limit,
		Total:   total,
		HasMore: filter.Offset()+len(reports) < total,
	}
	s.cache.Set(ctx, key, page, s.config.ListTTL)
	return page, nil
}

// Delete withdraws one of the caller's reports while it is still submitted.
func (s *ReportService) Delete(ctx context.Context, actor *models.Principal, id string, meta RequestMeta) error {
	report, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if report.UserID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "Not authorized to delete this report")
	}
	if !report.Status.Deletable() {
		return appErrors.Clone(appErrors.ErrConflict, "Only submitted reports can be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Report not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete report")
	}

	s.images.Remove(ctx, report.ImageURL)
	s.audit.Record(ctx, actor, AuditEntry{
		Action:     models.AuditActionReportDelete,
		Resource:   models.AuditResourceReport,
		ResourceID: id,
		Old:        report,
	}, meta)
	s.invalidate(ctx)
	return nil
}

// UpdateStatus applies a moderator's status change.
func (s *ReportService) UpdateStatus(ctx context.Context, actor *models.Principal, id string, req dto.UpdateStatusRequest, meta RequestMeta) (*dto.UpdateStatusResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "new_status is required")
	}
	next, err := models.ParseReportStatus(req.NewStatus)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid status")
	}

	report, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Department == nil || !actor.Department.Covers(report.Tag) {
		department := "none"
		if actor.Department != nil {
			department = actor.Department.String()
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("Your department (%s) cannot update %s reports", department, report.Tag))
	}

	if err := s.config.Policy.Check(report.Status, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
			fmt.Sprintf("Cannot change status from %s to %s", report.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, id, report.Status, next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Report was changed by another request. Reload and try again.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:     models.AuditActionStatusUpdate,
		Resource:   models.AuditResourceReport,
		ResourceID: id,
		Old:        map[string]string{"status": report.Status.String()},
		New:        map[string]string{"status": next.String()},
	}, meta)
	s.invalidate(ctx)
	s.metrics.RecordTransition(report.Status.String(), next.String())

	return &dto.UpdateStatusResponse{Message: "Status updated successfully", Status: next}, nil
}

func (s *ReportService) find(ctx context.Context, id string) (*models.Report, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report id is required")
	}
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return report, nil
}

func (s *ReportService) buildFilter(query dto.ListReportsQuery) (models.ReportFilter, error) {
	if err := s.validator.Struct(query); err != nil {
		return models.ReportFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid listing parameters")
	}
	filter := models.ReportFilter{
		Search: strings.TrimSpace(query.Search),
		Page:   query.Page,
		Limit:  query.Limit,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = s.config.DefaultLimit
	}
	if filter.Limit > s.config.MaxLimit {
		filter.Limit = s.config.MaxLimit
	}

	if raw := strings.TrimSpace(query.Status); raw != "" && !strings.EqualFold(raw, "all") {
		status, err := models.ParseReportStatus(raw)
		if err != nil {
			return models.ReportFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid status")
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(query.Tag); raw != "" && !strings.EqualFold(raw, "all") {
		tag, err := models.ParseTag(raw)
		if err != nil {
			return models.ReportFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid tag")
		}
		filter.Tag = &tag
	}
	if raw := strings.TrimSpace(query.Date); raw != "" {
		day, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return models.ReportFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
		}
		filter.Date = &day
	}
	return filter, nil
}

func (s *ReportService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.Pattern(reportsCacheScope), cache.Pattern(dashboardCacheScope))
}

func filterFingerprint(f models.ReportFilter) string {
	var status, tag, date string
	if f.Status != nil {
		status = f.Status.String()
	}
	if f.Tag != nil {
		tag = f.Tag.String()
	}
	if f.Date != nil {
		date = f.Date.Format(dateLayout)
	}
	return cache.Fingerprint(strings.ToLower(f.Search), status, tag, date, strconv.Itoa(f.Page), strconv.Itoa(f.Limit))
}
