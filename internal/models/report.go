package models

import "time"

// Report is a citizen-submitted issue stored in the reports table.
type Report struct {
	ID          string       `db:"id" json:"id"`
	ImageURL    string       `db:"image_url" json:"image_url"`
	Location    string       `db:"location" json:"location"`
	Description string       `db:"description" json:"description"`
	Tag         Tag          `db:"tag" json:"tags"`
	Status      ReportStatus `db:"status" json:"status"`
	UserID      string       `db:"user_id" json:"user_id"`
	ReportedAt  time.Time    `db:"reported_at" json:"reported_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"-"`
}

// ReportFilter captures the admin listing criteria.
type ReportFilter struct {
	Search string
	Status *ReportStatus
	Tag    *Tag
	Date   *time.Time
	Page   int
	Limit  int
}

// Offset returns the row offset for the 1-indexed page.
func (f ReportFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ReportPage is one page of the admin listing.
type ReportPage struct {
	Reports []Report `json:"reports"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Total   int      `json:"total"`
	HasMore bool     `json:"has_more"`
}
