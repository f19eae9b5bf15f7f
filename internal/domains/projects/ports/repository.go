package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/clockline/clockline/internal/domains/projects/domain"
)

var (
	// ErrNotFound signals the project is absent or soft-deleted.
	ErrNotFound = errors.New("project not found")

	// ErrStorage matches any StorageError via errors.Is.
	ErrStorage = errors.New("project storage failure")
)

// StorageError wraps an underlying storage fault with enough context to log
// without re-deriving it.
type StorageError struct {
	Op        string
	ProjectID int64
	Err       error
}

func (e *StorageError) Error() string {
	if e.ProjectID != 0 {
		return fmt.Sprintf("project storage: %s (project %d): %v", e.Op, e.ProjectID, e.Err)
	}
	return fmt.Sprintf("project storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// MaxPageSize is the hard ceiling applied to every list operation,
// regardless of what the caller requests.
const MaxPageSize = 100

// DefaultPageSize applies when a caller passes a non-positive limit.
const DefaultPageSize = 20

// ListFilter narrows list and count queries. Nil fields mean "any".
type ListFilter struct {
	Status        *domain.Status
	ClientID      *int64
	ResponsibleID *int64
}

// Repository is the persistence contract for the project aggregate. Every
// read excludes soft-deleted rows.
type Repository interface {
	// Save upserts by ID presence: zero ID inserts and returns the project
	// with its generated ID and timestamps; a non-zero ID updates and fails
	// with ErrNotFound when the row is absent or soft-deleted.
	Save(ctx context.Context, p *domain.Project) (*domain.Project, error)

	GetByID(ctx context.Context, id int64) (*domain.Project, error)

	// List pages by offset. The limit is silently capped at MaxPageSize.
	// Offset cost grows with skip; deep pagination should use ListAfter.
	List(ctx context.Context, f ListFilter, skip, limit int) ([]*domain.Project, error)

	// ListAfter pages by keyset, strictly ascending by ID. It returns the ID
	// to resume from, or nil on the last page.
	ListAfter(ctx context.Context, f ListFilter, afterID int64, limit int) ([]*domain.Project, *int64, error)

	// Overdue returns in-progress projects whose planned end has passed.
	Overdue(ctx context.Context) ([]*domain.Project, error)

	CountByStatus(ctx context.Context, status domain.Status) (int64, error)

	// Delete soft-deletes the project, reporting whether a live row existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// Purge physically removes the project and every dependent row,
	// dependents of dependents first. It is all-or-nothing: a failure at any
	// step aborts the whole cascade.
	Purge(ctx context.Context, id int64) (bool, error)
}
