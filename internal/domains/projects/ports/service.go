package ports

import (
	"context"

	types "github.com/clockline/clockline/internal/domains/projects/application/types"
	"github.com/clockline/clockline/internal/domains/projects/domain"
)

// Service is the application-facing surface for the projects context. HTTP
// or RPC layers sit on top of it; decorators (caching, observability) wrap it.
type Service interface {
	Create(ctx context.Context, input types.CreateProjectInput) (*domain.Project, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, input types.ListInput) ([]*domain.Project, error)

	// ListByCursor pages with an opaque cursor token. An empty or garbled
	// token means "first page", never an error.
	ListByCursor(ctx context.Context, input types.CursorListInput) (*types.CursorPage, error)

	Update(ctx context.Context, id int64, input types.UpdateProjectInput) (*domain.Project, error)
	Start(ctx context.Context, id int64) (*domain.Project, error)
	Pause(ctx context.Context, id int64) (*domain.Project, error)
	Complete(ctx context.Context, id int64, input types.CompleteProjectInput) (*domain.Project, error)
	Cancel(ctx context.Context, id int64, input types.CancelProjectInput) (*domain.Project, error)

	// Delete soft-deletes by default; force performs the cascading
	// physical purge.
	Delete(ctx context.Context, id int64, force bool) error

	Overdue(ctx context.Context) ([]*domain.Project, error)
	Statistics(ctx context.Context) (*types.Statistics, error)
}
