package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/export"
	"github.com/noah-isme/streetvoice-api/pkg/jobs"
)

// ExportJobKind tags queue jobs produced by the export service.
const ExportJobKind = "report_export"

const cleanupBatch = 100

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, resultName string, finishedAt time.Time) error
	MarkFailed(ctx context.Context, id, message string, finishedAt time.Time) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
	ClearResult(ctx context.Context, id string) error
}

type exportReportSource interface {
	ListForExport(ctx context.Context, params models.ExportParams) ([]models.Report, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportFileStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(exportID, name string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
	TTL() time.Duration
}

// ExportConfig governs download links and retention.
type ExportConfig struct {
	DownloadPath string
	ResultTTL    time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportService manages the lifecycle of report export jobs.
type ExportService struct {
	repo      exportJobStore
	queue     jobDispatcher
	files     exportFileStore
	signer    downloadSigner
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(repo exportJobStore, queue jobDispatcher, files exportFileStore, signer downloadSigner, audit *AuditService, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/exports/download"
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = signer.TTL()
	}
	return &ExportService{
		repo:      repo,
		queue:     queue,
		files:     files,
		signer:    signer,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create validates the request, persists a job and enqueues it.
func (s *ExportService) Create(ctx context.Context, actor *models.Principal, req dto.ExportRequest, meta RequestMeta) (*dto.ExportJobResponse, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	params, err := exportParams(req)
	if err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		Format:    models.ExportFormat(req.Format),
		Params:    params,
		CreatedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: ExportJobKind}); err != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, "failed to enqueue job", s.now().UTC()); markErr != nil {
			s.logger.Warn("failed to mark export failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "export queue is unavailable")
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:     models.AuditActionExport,
		Resource:   "export",
		ResourceID: job.ID,
		New:        job.Params,
	}, meta)

	return &dto.ExportJobResponse{ID: job.ID, Format: job.Format, Status: job.Status, CreatedAt: job.CreatedAt}, nil
}

// GetStatus exposes job metadata to its creator. Finished jobs carry a
// freshly signed download URL.
func (s *ExportService) GetStatus(ctx context.Context, actor *models.Principal, id string) (*dto.ExportJobResponse, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.CreatedBy != actor.UserID {
		return nil, appErrors.ErrForbidden
	}

	resp := &dto.ExportJobResponse{
		ID:         job.ID,
		Format:     job.Format,
		Status:     job.Status,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	if job.Status == models.ExportFinished && job.ResultURL != nil && *job.ResultURL != "" {
		token, expiresAt, err := s.signer.Generate(job.ID, *job.ResultURL)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		url := path.Join(s.cfg.DownloadPath, token)
		resp.DownloadURL = &url
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, name, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.Status != models.ExportFinished || job.ResultURL == nil || *job.ResultURL != name {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Export file is no longer available")
	}

	file, err := s.files.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Export file is no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}

	contentType := "application/octet-stream"
	if renderer, err := export.ForFormat(string(job.Format)); err == nil {
		contentType = renderer.ContentType()
	}
	return &ExportDownload{
		File:        file,
		Filename:    path.Base(name),
		ContentType: contentType,
		ExpiresAt:   expiresAt,
	}, nil
}

// RecoverPending re-enqueues jobs that were queued or running when the
// process last stopped.
func (s *ExportService) RecoverPending(ctx context.Context) error {
	pending, err := s.repo.ListQueued(ctx, cleanupBatch)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: ExportJobKind}); err != nil {
			s.logger.Warn("failed to re-enqueue export", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("recovered pending exports", zap.Int("count", len(pending)))
	}
	return nil
}

// Cleanup removes result files past retention and detaches them from their jobs.
func (s *ExportService) Cleanup(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	for {
		finished, err := s.repo.ListFinishedBefore(ctx, cutoff, cleanupBatch)
		if err != nil {
			s.logger.Warn("export cleanup list failed", zap.Error(err))
			return
		}
		for _, job := range finished {
			if job.ResultURL != nil && *job.ResultURL != "" {
				if err := s.files.Delete(*job.ResultURL); err != nil {
					s.logger.Warn("export cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
					return
				}
			}
			if err := s.repo.ClearResult(ctx, job.ID); err != nil {
				s.logger.Warn("export cleanup clear failed", zap.String("job_id", job.ID), zap.Error(err))
				return
			}
		}
		if len(finished) < cleanupBatch {
			break
		}
	}
	if removed, err := s.files.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export storage cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Info("removed stale export files", zap.Int("count", len(removed)))
	}
}

// ScheduleCleanup runs Cleanup on a cron schedule until ctx is done. The
// returned scheduler is already started.
func (s *ExportService) ScheduleCleanup(ctx context.Context, spec string) (*cron.Cron, error) {
	if spec == "" {
		spec = "@hourly"
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(spec, func() { s.Cleanup(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule export cleanup %q: %w", spec, err)
	}
	scheduler.Start()
	go func() {
		<-ctx.Done()
		<-scheduler.Stop().Done()
	}()
	return scheduler, nil
}

func exportParams(req dto.ExportRequest) (models.ExportParams, error) {
	var params models.ExportParams
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := models.ParseReportStatus(raw)
		if err != nil {
			return params, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid status")
		}
		params.Status = &status
	}
	if raw := strings.TrimSpace(req.Tag); raw != "" {
		tag, err := models.ParseTag(raw)
		if err != nil {
			return params, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid tag")
		}
		params.Tag = &tag
	}
	return params, nil
}

// ExportWorker bridges queue jobs to the renderers.
type ExportWorker struct {
	repo    exportJobStore
	reports exportReportSource
	files   exportFileStore
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo exportJobStore, reports exportReportSource, files exportFileStore, metrics *MetricsService, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{repo: repo, reports: reports, files: files, metrics: metrics, logger: logger, now: time.Now}
}

// Handle processes a queue job. Returned errors are retried by the queue.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.FindByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load export %s: %w", job.ID, err)
	}
	if record.Status == models.ExportFinished || record.Status == models.ExportFailed {
		return nil
	}
	if err := w.repo.MarkProcessing(ctx, job.ID); err != nil {
		return err
	}

	renderer, err := export.ForFormat(string(record.Format))
	if err != nil {
		return err
	}
	reports, err := w.reports.ListForExport(ctx, record.Params)
	if err != nil {
		return err
	}
	data, err := renderer.Render(reportDataset(reports, w.now()))
	if err != nil {
		return fmt.Errorf("render export: %w", err)
	}

	name := path.Join("exports", fmt.Sprintf("%s.%s", record.ID, renderer.Extension()))
	stored, err := w.files.Save(name, data)
	if err != nil {
		return err
	}
	if err := w.repo.MarkFinished(ctx, job.ID, stored, w.now().UTC()); err != nil {
		return err
	}
	w.metrics.RecordExport(string(models.ExportFinished))
	w.logger.Info("export finished", zap.String("job_id", job.ID), zap.Int("rows", len(reports)), zap.Int("bytes", len(data)))
	return nil
}

// GiveUp marks a job failed once the queue exhausted its retries.
func (w *ExportWorker) GiveUp(ctx context.Context, job jobs.Job, cause error) {
	msg := "export failed"
	if cause != nil {
		msg = cause.Error()
	}
	if err := w.repo.MarkFailed(ctx, job.ID, msg, w.now().UTC()); err != nil {
		w.logger.Warn("failed to mark export failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	w.metrics.RecordExport(string(models.ExportFailed))
}

var exportColumns = []export.Column{
	{Key: "id", Title: "ID", Weight: 1.4},
	{Key: "reported_at", Title: "Reported At", Weight: 1.2},
	{Key: "tag", Title: "Tag", Weight: 0.8},
	{Key: "status", Title: "Status", Weight: 0.8},
	{Key: "location", Title: "Location", Weight: 1.6},
	{Key: "description", Title: "Description", Weight: 2.6},
	{Key: "image_url", Title: "Image", Weight: 1.4},
}

func reportDataset(reports []models.Report, generatedAt time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, map[string]string{
			"id":          r.ID,
			"reported_at": r.ReportedAt.UTC().Format("2006-01-02 15:04"),
			"tag":         r.Tag.String(),
			"status":      r.Status.Label(),
			"location":    r.Location,
			"description": r.Description,
			"image_url":   r.ImageURL,
		})
	}
	return export.Dataset{
		Title:   "StreetVoice reports " + generatedAt.UTC().Format("2006-01-02"),
		Columns: exportColumns,
		Rows:    rows,
	}
}
