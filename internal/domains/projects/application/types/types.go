// Package types holds the input and output shapes of the projects
// application service, shared between the service, its decorators, and the
// ports package.
package types

import (
	"time"

	"github.com/clockline/clockline/internal/domains/projects/domain"
)

// CreateProjectInput carries everything needed to open a new project.
type CreateProjectInput struct {
	Name           string
	Description    string
	ClientID       int64
	ResponsibleID  int64
	StartDate      time.Time
	PlannedEnd     *time.Time
	EstimatedValue string
	ContributorIDs []int64
}

// UpdateProjectInput is a partial edit: nil fields are left unchanged.
type UpdateProjectInput struct {
	Name           *string
	Description    *string
	PlannedEnd     *time.Time
	Observations   *string
	EstimatedValue *string
	ContributorIDs *[]int64
}

// CompleteProjectInput finishes a project. A zero CompletedOn means today.
type CompleteProjectInput struct {
	CompletedOn time.Time
}

// CancelProjectInput aborts a project, optionally recording who and why.
type CancelProjectInput struct {
	Reason string
	Author string
}

// ListInput pages by offset with optional filters.
type ListInput struct {
	Skip          int
	Limit         int
	Status        *domain.Status
	ClientID      *int64
	ResponsibleID *int64
}

// CursorListInput pages by opaque cursor with optional filters.
type CursorListInput struct {
	Cursor   string
	Limit    int
	Status   *domain.Status
	ClientID *int64
}

// CursorPage is one page of cursor results. An empty NextCursor marks the
// last page; otherwise the token is safe to pass back verbatim.
type CursorPage struct {
	Projects   []*domain.Project
	NextCursor string
}

// Statistics aggregates per-status counts plus derived totals.
type Statistics struct {
	ByStatus     map[domain.Status]int64
	TotalActive  int64
	TotalOverdue int64
}
