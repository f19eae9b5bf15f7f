package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Status represents the lifecycle state of a project.
type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid status in a stable order.
var Statuses = []Status{
	StatusPlanning,
	StatusInProgress,
	StatusPaused,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// MaxNameLength bounds the project name.
const MaxNameLength = 200

var (
	ErrEmptyName   = errors.New("project name is required")
	ErrNameTooLong = errors.New("project name exceeds 200 characters")
	ErrDateOrder   = errors.New("planned end date cannot precede start date")

	// ErrInvalidTransition matches any TransitionError via errors.Is.
	ErrInvalidTransition = errors.New("invalid project status transition")

	// ErrNotModifiable signals an edit attempt on a terminal-state project.
	ErrNotModifiable = errors.New("completed or cancelled projects cannot be modified")
)

// TransitionError reports a rejected state transition with the state the
// project was in and the operation that was attempted.
type TransitionError struct {
	From Status
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s project while %s", e.Op, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Note is a structured, append-only annotation on a project. Cancellation
// reasons are recorded here instead of being concatenated into Observations.
type Note struct {
	At     time.Time `json:"at"`
	Author string    `json:"author,omitempty"`
	Text   string    `json:"text"`
}

// Project is the aggregate root for project tracking. It carries no
// persistence concerns; repositories translate it to and from storage.
type Project struct {
	ID int64

	Name        string
	Description string

	StartDate  time.Time
	PlannedEnd *time.Time
	ActualEnd  *time.Time

	Status Status

	ClientID       int64
	ResponsibleID  int64
	ContributorIDs []int64

	EstimatedValue string
	Observations   string
	Notes          []Note

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewProject builds a project in the planning state, validating the name and
// the date ordering invariant. ID and timestamps stay zero until a repository
// persists the aggregate.
func NewProject(name string, clientID, responsibleID int64, startDate time.Time, plannedEnd *time.Time) (*Project, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateDates(startDate, plannedEnd); err != nil {
		return nil, err
	}
	return &Project{
		Name:          name,
		StartDate:     startDate,
		PlannedEnd:    plannedEnd,
		Status:        StatusPlanning,
		ClientID:      clientID,
		ResponsibleID: responsibleID,
	}, nil
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func validateDates(start time.Time, plannedEnd *time.Time) error {
	if plannedEnd != nil && plannedEnd.Before(start) {
		return ErrDateOrder
	}
	return nil
}

// Start moves the project into progress. Legal only from planning or paused.
func (p *Project) Start() error {
	if p.Status != StatusPlanning && p.Status != StatusPaused {
		return &TransitionError{From: p.Status, Op: "start"}
	}
	p.Status = StatusInProgress
	return nil
}

// Pause suspends an in-progress project.
func (p *Project) Pause() error {
	if p.Status != StatusInProgress {
		return &TransitionError{From: p.Status, Op: "pause"}
	}
	p.Status = StatusPaused
	return nil
}

// Complete finishes an in-progress project and records the actual end date.
// A zero completedOn defaults to today.
func (p *Project) Complete(completedOn time.Time) error {
	if p.Status != StatusInProgress {
		return &TransitionError{From: p.Status, Op: "complete"}
	}
	if completedOn.IsZero() {
		completedOn = today()
	}
	p.Status = StatusCompleted
	p.ActualEnd = &completedOn
	return nil
}

// Cancel aborts the project from any non-completed state, including an
// already-cancelled one (re-cancel is idempotent and only appends a note).
// A non-empty reason is kept as a structured note.
func (p *Project) Cancel(reason, author string) error {
	if p.Status == StatusCompleted {
		return &TransitionError{From: p.Status, Op: "cancel"}
	}
	p.Status = StatusCancelled
	if reason = strings.TrimSpace(reason); reason != "" {
		p.Notes = append(p.Notes, Note{At: time.Now().UTC(), Author: author, Text: reason})
	}
	return nil
}

// Update carries a partial edit: nil fields mean "leave unchanged".
type Update struct {
	Name           *string
	Description    *string
	PlannedEnd     *time.Time
	Observations   *string
	EstimatedValue *string
	ContributorIDs *[]int64
}

// UpdateDetails applies a partial edit. Rejected once the project reached a
// terminal state; the date invariant is re-checked when the planned end moves.
func (p *Project) UpdateDetails(u Update) error {
	if !p.IsModifiable() {
		return ErrNotModifiable
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if err := validateName(name); err != nil {
			return err
		}
		p.Name = name
	}
	if u.PlannedEnd != nil {
		if err := validateDates(p.StartDate, u.PlannedEnd); err != nil {
			return err
		}
		p.PlannedEnd = u.PlannedEnd
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Observations != nil {
		p.Observations = *u.Observations
	}
	if u.EstimatedValue != nil {
		p.EstimatedValue = *u.EstimatedValue
	}
	if u.ContributorIDs != nil {
		p.ContributorIDs = append([]int64{}, (*u.ContributorIDs)...)
	}
	return nil
}

// IsModifiable reports whether the project accepts edits.
func (p *Project) IsModifiable() bool {
	return p.Status != StatusCompleted && p.Status != StatusCancelled
}

// IsActive reports whether the project is in progress and not soft-deleted.
func (p *Project) IsActive() bool {
	return p.Status == StatusInProgress && p.DeletedAt == nil
}

// IsOverdue reports whether an active project slipped past its planned end.
func (p *Project) IsOverdue(todayDate time.Time) bool {
	if p.PlannedEnd == nil || !p.IsActive() {
		return false
	}
	return todayDate.After(*p.PlannedEnd)
}

// DurationDays returns the whole days between start and actual end. The
// second return is false until the project has an actual end date.
func (p *Project) DurationDays() (int, bool) {
	if p.ActualEnd == nil {
		return 0, false
	}
	return int(p.ActualEnd.Sub(p.StartDate).Hours() / 24), true
}

// Equal compares by identity. Unsaved projects (zero ID) never equal
// anything, including structurally identical copies.
func (p *Project) Equal(other *Project) bool {
	if other == nil {
		return false
	}
	return p.ID != 0 && p.ID == other.ID
}

func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
