package models

import (
	"errors"
	"fmt"
	"strings"
)

// ReportStatus is the moderation lifecycle of a report.
type ReportStatus string

const (
	StatusSubmitted  ReportStatus = "submitted"
	StatusInProgress ReportStatus = "in-progress"
	StatusResolved   ReportStatus = "resolved"
)

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []ReportStatus{StatusSubmitted, StatusInProgress, StatusResolved}

// ParseReportStatus accepts "Submitted", "In Progress", "in_progress" and
// similar variants and returns the canonical lower-kebab value.
func ParseReportStatus(raw string) (ReportStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	if norm == "inprogress" {
		norm = string(StatusInProgress)
	}
	for _, s := range AllStatuses {
		if norm == string(s) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Next returns the following lifecycle step, if any.
func (s ReportStatus) Next() (ReportStatus, bool) {
	for i, candidate := range AllStatuses {
		if candidate == s && i+1 < len(AllStatuses) {
			return AllStatuses[i+1], true
		}
	}
	return "", false
}

// Deletable reports whether the owner may still withdraw the report.
func (s ReportStatus) Deletable() bool {
	return s == StatusSubmitted
}

// Label is the human form used in exports and the console.
func (s ReportStatus) Label() string {
	switch s {
	case StatusSubmitted:
		return "Submitted"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	default:
		return string(s)
	}
}

func (s ReportStatus) String() string { return string(s) }

// TransitionPolicy decides which status changes a moderator may apply.
type TransitionPolicy string

const (
	// PolicyPermissive allows any status to be set from any status.
	PolicyPermissive TransitionPolicy = "permissive"
	// PolicyStrict allows only the next forward lifecycle step.
	PolicyStrict TransitionPolicy = "strict"
)

// ErrTransitionNotAllowed is returned by Check for rejected changes.
var ErrTransitionNotAllowed = errors.New("status transition not allowed")

// Check validates moving a report from one status to another.
func (p TransitionPolicy) Check(from, to ReportStatus) error {
	if p != PolicyStrict {
		return nil
	}
	if next, ok := from.Next(); ok && next == to {
		return nil
	}
	return fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, from, to)
}
