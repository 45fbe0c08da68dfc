package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

const reportColumns = `id, image_url, location, description, tag, status, user_id, reported_at, updated_at`

// ReportRepository provides database access for citizen reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report with generated defaults.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Status == "" {
		report.Status = models.StatusSubmitted
	}
	now := time.Now().UTC()
	if report.ReportedAt.IsZero() {
		report.ReportedAt = now
	}
	report.UpdatedAt = now

	const query = `INSERT INTO reports (` + reportColumns + `) VALUES (:id, :image_url, :location, :description, :tag, :status, :user_id, :reported_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// FindByID returns a report by identifier. sql.ErrNoRows is returned unwrapped.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1 LIMIT 1`
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &report, nil
}

// ListByUser returns the reports a user submitted, newest first.
func (r *ReportRepository) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM reports WHERE user_id = $1 ORDER BY reported_at DESC, id DESC`
	reports := make([]models.Report, 0)
	if err := r.db.SelectContext(ctx, &reports, query, userID); err != nil {
		return nil, fmt.Errorf("list user reports: %w", err)
	}
	return reports, nil
}

// List returns one page of reports matching the filter plus the total count.
// Ordering is total (reported_at, id) so pages never overlap.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error) {
	where, args := buildReportWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	filter.Limit = limit

	listQuery := fmt.Sprintf("SELECT %s FROM reports%s ORDER BY reported_at DESC, id DESC LIMIT %d OFFSET %d", reportColumns, where, limit, filter.Offset())
	reports := make([]models.Report, 0, limit)
	if err := r.db.SelectContext(ctx, &reports, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	return reports, total, nil
}

// ListForExport returns every report matching the optional status and tag.
func (r *ReportRepository) ListForExport(ctx context.Context, params models.ExportParams) ([]models.Report, error) {
	where, args := buildReportWhere(models.ReportFilter{Status: params.Status, Tag: params.Tag})
	query := fmt.Sprintf("SELECT %s FROM reports%s ORDER BY reported_at DESC, id DESC", reportColumns, where)
	reports := make([]models.Report, 0)
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("list reports for export: %w", err)
	}
	return reports, nil
}

// UpdateStatus moves a report from one status to another. It only matches a
// row still holding from and returns sql.ErrNoRows otherwise.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, from, to models.ReportStatus) error {
	const query = `UPDATE reports SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a report row.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return expectAffected(res)
}

// CountByStatus groups every report by status.
func (r *ReportRepository) CountByStatus(ctx context.Context) ([]models.CountRow, error) {
	return r.counts(ctx, `SELECT status AS key, COUNT(*) AS count FROM reports GROUP BY status`, "count by status")
}

// CountByTag groups every report by tag.
func (r *ReportRepository) CountByTag(ctx context.Context) ([]models.CountRow, error) {
	return r.counts(ctx, `SELECT tag AS key, COUNT(*) AS count FROM reports GROUP BY tag`, "count by tag")
}

// TopZones returns the busiest locations, most reports first.
func (r *ReportRepository) TopZones(ctx context.Context, limit int) ([]models.ZoneCount, error) {
	const query = `SELECT location AS zone, COUNT(*) AS count FROM reports GROUP BY location ORDER BY count DESC, zone ASC LIMIT $1`
	zones := make([]models.ZoneCount, 0, limit)
	if err := r.db.SelectContext(ctx, &zones, query, limit); err != nil {
		return nil, fmt.Errorf("top zones: %w", err)
	}
	return zones, nil
}

// CountSince counts reports submitted at or after since.
func (r *ReportRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports WHERE reported_at >= $1`, since); err != nil {
		return 0, fmt.Errorf("count recent reports: %w", err)
	}
	return total, nil
}

func (r *ReportRepository) counts(ctx context.Context, query, label string) ([]models.CountRow, error) {
	rows := make([]models.CountRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return rows, nil
}

func buildReportWhere(filter models.ReportFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Tag != nil {
		args = append(args, *filter.Tag)
		conditions = append(conditions, fmt.Sprintf("tag = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(location) LIKE $%d OR LOWER(description) LIKE $%d OR LOWER(tag) LIKE $%d)", n, n, n))
	}
	if filter.Date != nil {
		day := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, time.UTC)
		args = append(args, day, day.Add(24*time.Hour))
		conditions = append(conditions, fmt.Sprintf("reported_at >= $%d AND reported_at < $%d", len(args)-1, len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
