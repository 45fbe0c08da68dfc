package client

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

var (
	// ErrFetchInFlight is returned when a page is already being fetched.
	ErrFetchInFlight = errors.New("client: fetch already in flight")
	// ErrHalted is returned by LoadMore after a failed fetch until Apply or
	// Retry succeeds.
	ErrHalted = errors.New("client: listing halted after an error")
	// ErrNoMorePages is returned by LoadMore once the listing is exhausted.
	ErrNoMorePages = errors.New("client: no more pages")
	// ErrStaleResponse is returned for a response superseded by a newer fetch.
	// Its rows were discarded.
	ErrStaleResponse = errors.New("client: stale response discarded")
)

const defaultPageSize = 20

// Filters narrow the admin listing. Zero values mean no filter. Date is
// YYYY-MM-DD.
type Filters struct {
	Search string
	Status models.ReportStatus
	Tag    models.Tag
	Date   string
}

func (f Filters) values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Status != "" {
		v.Set("status", f.Status.String())
	}
	if f.Tag != "" {
		v.Set("tag", f.Tag.String())
	}
	if f.Date != "" {
		v.Set("date", f.Date)
	}
	return v
}

type reportLister interface {
	ListReports(ctx context.Context, q ListQuery) (*ReportPage, error)
}

type fetchKind int

const (
	fetchNone fetchKind = iota
	fetchFirst
	fetchNext
)

// Feed is the admin report listing. Edited filters stay pending until Apply;
// LoadMore appends the next page of the active filters.
type Feed struct {
	mu         sync.Mutex
	api        reportLister
	limit      int
	pending    Filters
	active     Filters
	rows       []models.Report
	page       int
	hasMore    bool
	loading    bool
	failed     fetchKind
	retry      Filters
	err        error
	generation uint64
	onReset    []func()
}

// NewFeed builds a Feed fetching limit rows per page.
func NewFeed(api reportLister, limit int) *Feed {
	if limit <= 0 {
		limit = defaultPageSize
	}
	return &Feed{api: api, limit: limit}
}

// OnReset registers fn to run whenever Apply replaces the rows.
func (f *Feed) OnReset(fn func()) {
	f.mu.Lock()
	f.onReset = append(f.onReset, fn)
	f.mu.Unlock()
}

// SetFilters edits the pending filters. The listing is unchanged until Apply.
func (f *Feed) SetFilters(filters Filters) {
	f.mu.Lock()
	f.pending = filters
	f.mu.Unlock()
}

// Pending returns the edited, not yet applied filters.
func (f *Feed) Pending() Filters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Active returns the filters the rows were fetched with.
func (f *Feed) Active() Filters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Apply activates the pending filters and replaces the rows with their first
// page. The active filters change only when the fetch succeeds. Successful
// applies clear every pending row edit.
func (f *Feed) Apply(ctx context.Context) error {
	f.mu.Lock()
	filters := f.pending
	f.mu.Unlock()
	return f.apply(ctx, filters)
}

func (f *Feed) apply(ctx context.Context, filters Filters) error {
	f.mu.Lock()
	query := ListQuery{Filters: filters, Page: 1, Limit: f.limit}
	gen := f.begin()
	f.mu.Unlock()

	page, err := f.api.ListReports(ctx, query)

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		return ErrStaleResponse
	}
	f.loading = false
	if err != nil {
		f.fail(fetchFirst, err)
		f.retry = filters
		f.mu.Unlock()
		return err
	}
	f.active = filters
	f.rows = append([]models.Report(nil), page.Reports...)
	f.page = 1
	f.hasMore = f.more(page, len(f.rows))
	f.failed, f.err = fetchNone, nil
	hooks := append([]func(){}, f.onReset...)
	f.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return nil
}

// LoadMore appends the next page of the active filters.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.loading:
		f.mu.Unlock()
		return ErrFetchInFlight
	case f.failed != fetchNone:
		f.mu.Unlock()
		return ErrHalted
	case !f.hasMore:
		f.mu.Unlock()
		return ErrNoMorePages
	}
	next := f.page + 1
	query := ListQuery{Filters: f.active, Page: next, Limit: f.limit}
	gen := f.begin()
	f.mu.Unlock()

	page, err := f.api.ListReports(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return ErrStaleResponse
	}
	f.loading = false
	if err != nil {
		f.fail(fetchNext, err)
		return err
	}
	f.rows = append(f.rows, page.Reports...)
	f.page = next
	f.hasMore = f.more(page, len(f.rows))
	return nil
}

// Retry repeats the fetch that failed with the same filters. It is a no-op
// when nothing failed.
func (f *Feed) Retry(ctx context.Context) error {
	f.mu.Lock()
	failed, filters := f.failed, f.retry
	if failed == fetchNext {
		f.failed, f.err = fetchNone, nil
	}
	f.mu.Unlock()

	switch failed {
	case fetchFirst:
		return f.apply(ctx, filters)
	case fetchNext:
		return f.LoadMore(ctx)
	default:
		return nil
	}
}

// begin opens a fetch. Callers hold mu.
func (f *Feed) begin() uint64 {
	f.generation++
	f.loading = true
	return f.generation
}

func (f *Feed) fail(kind fetchKind, err error) {
	f.failed = kind
	f.err = err
}

// more prefers the server's has_more, then total. Without either a full page
// is taken to mean another page exists, which is wrong exactly when the row
// count is a multiple of the page size.
func (f *Feed) more(page *ReportPage, loaded int) bool {
	if page.HasMore != nil {
		return *page.HasMore
	}
	if page.Total != nil {
		return loaded < *page.Total
	}
	limit := page.Limit
	if limit <= 0 {
		limit = f.limit
	}
	return len(page.Reports) == limit
}

// applyStatus records a saved status on the matching row.
func (f *Feed) applyStatus(id string, status models.ReportStatus) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = status
			return true
		}
	}
	return false
}

// Row returns the loaded report with id.
func (f *Feed) Row(id string) (models.Report, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return r, true
		}
	}
	return models.Report{}, false
}

// Rows returns a copy of the loaded reports.
func (f *Feed) Rows() []models.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Report(nil), f.rows...)
}

// Page is the last page fetched, zero before the first Apply.
func (f *Feed) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

// HasMore reports whether LoadMore can fetch another page.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore && f.failed == fetchNone
}

// Loading reports whether a fetch is in flight.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Err is the error of the last failed fetch, cleared by a successful Apply.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
