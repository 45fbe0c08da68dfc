package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

var (
	// ErrSaveInFlight is returned while the row's previous save is running.
	ErrSaveInFlight = errors.New("client: status save already in flight")
	// ErrNothingToSave is returned by Save for a row without a pending edit.
	ErrNothingToSave = errors.New("client: no pending status change")
)

// RowState is the edit state of one listing row.
type RowState int

const (
	// RowClean shows the status stored on the server.
	RowClean RowState = iota
	// RowPending holds a proposed status that has not been saved.
	RowPending
	// RowSaving has a save in flight.
	RowSaving
)

func (s RowState) String() string {
	switch s {
	case RowPending:
		return "pending"
	case RowSaving:
		return "saving"
	default:
		return "clean"
	}
}

type statusUpdater interface {
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (models.ReportStatus, error)
}

type rowEdit struct {
	state    RowState
	proposed models.ReportStatus
	// discarded marks a saving edit that outlived a Reset. It is dropped
	// instead of returning to pending when the save fails.
	discarded bool
}

// Moderator drives status changes on the rows of a Feed. A proposed status
// never touches the Feed until the server accepts it.
type Moderator struct {
	mu      sync.Mutex
	api     statusUpdater
	feed    *Feed
	notices *Notices
	edits   map[string]*rowEdit
}

// NewModerator binds a Moderator to feed. Applying new filters on the feed
// discards every pending edit.
func NewModerator(api statusUpdater, feed *Feed, notices *Notices) *Moderator {
	m := &Moderator{api: api, feed: feed, notices: notices, edits: make(map[string]*rowEdit)}
	feed.OnReset(m.Reset)
	return m
}

// Select proposes status for row id. Selecting the stored status returns the
// row to clean.
func (m *Moderator) Select(id string, status models.ReportStatus) error {
	row, ok := m.feed.Row(id)
	if !ok {
		return localError(KindNotFound, "Report not found.")
	}
	parsed, err := models.ParseReportStatus(status.String())
	if err != nil {
		return &Error{Kind: KindValidationRejected, Detail: "Invalid status.", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.edits[id]; ok && e.state == RowSaving {
		return ErrSaveInFlight
	}
	if parsed == row.Status {
		delete(m.edits, id)
		return nil
	}
	m.edits[id] = &rowEdit{state: RowPending, proposed: parsed}
	return nil
}

// State returns the row state and the status it displays.
func (m *Moderator) State(id string) (RowState, models.ReportStatus) {
	m.mu.Lock()
	e, ok := m.edits[id]
	var state RowState
	var proposed models.ReportStatus
	if ok {
		state, proposed = e.state, e.proposed
	}
	m.mu.Unlock()

	if ok {
		return state, proposed
	}
	row, _ := m.feed.Row(id)
	return RowClean, row.Status
}

// CanSave reports whether id has a pending edit.
func (m *Moderator) CanSave(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.edits[id]
	return ok && e.state == RowPending
}

// Save sends the pending edit of id. On failure the edit stays pending and
// an error notice is posted.
func (m *Moderator) Save(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.edits[id]
	switch {
	case !ok:
		m.mu.Unlock()
		return ErrNothingToSave
	case e.state == RowSaving:
		m.mu.Unlock()
		return ErrSaveInFlight
	}
	e.state = RowSaving
	proposed := e.proposed
	m.mu.Unlock()

	stored, err := m.api.UpdateStatus(ctx, id, proposed)

	m.mu.Lock()
	current := m.edits[id] == e
	if err != nil {
		switch {
		case current && e.discarded:
			delete(m.edits, id)
		case current:
			e.state = RowPending
		}
		m.mu.Unlock()
		err = saveError(err)
		m.notices.Failure(err, ErrUpdateFailed.Detail)
		return err
	}
	if current {
		delete(m.edits, id)
	}
	m.mu.Unlock()

	m.feed.applyStatus(id, stored)
	m.notices.Success(fmt.Sprintf("Status updated to %s.", stored.Label()))
	return nil
}

// Reset discards every pending edit. Rows with a save in flight keep their
// guard until the save returns.
func (m *Moderator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.edits {
		if e.state == RowSaving {
			e.discarded = true
			continue
		}
		delete(m.edits, id)
	}
}

// saveError keeps authorization and transport failures and reports any other
// server rejection as UpdateFailed.
func saveError(err error) error {
	e, ok := AsError(err)
	if !ok || e.Status == 0 || e.Kind == KindAuthorizationDenied {
		return err
	}
	detail := e.Detail
	if detail == "" || detail == http.StatusText(e.Status) {
		detail = ErrUpdateFailed.Detail
	}
	return &Error{Kind: KindUpdateFailed, Status: e.Status, Detail: detail, Err: err}
}
