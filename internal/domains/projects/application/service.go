package application

import (
	"context"

	types "github.com/clockline/clockline/internal/domains/projects/application/types"
	"github.com/clockline/clockline/internal/domains/projects/domain"
	"github.com/clockline/clockline/internal/domains/projects/ports"
)

var _ ports.Service = (*Service)(nil)

// Service orchestrates the projects bounded context. Reads go through the
// plain repository; every mutation runs inside one transaction scope.
type Service struct {
	repo ports.Repository
	tx   ports.TransactionManager
}

// NewService wires the projects service with its dependencies.
func NewService(repo ports.Repository, tx ports.TransactionManager) *Service {
	return &Service{repo: repo, tx: tx}
}

// Create validates the input, builds a planning-state project, and persists
// it atomically.
func (s *Service) Create(ctx context.Context, input types.CreateProjectInput) (*domain.Project, error) {
	project, err := domain.NewProject(input.Name, input.ClientID, input.ResponsibleID, input.StartDate, input.PlannedEnd)
	if err != nil {
		return nil, mapError(err)
	}
	project.Description = input.Description
	project.EstimatedValue = input.EstimatedValue
	if len(input.ContributorIDs) > 0 {
		project.ContributorIDs = append([]int64{}, input.ContributorIDs...)
	}

	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	defer uow.Close()

	saved, err := uow.Projects().Save(ctx, project)
	if err != nil {
		return nil, mapError(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Get loads a single project.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return project, nil
}

// List pages by offset. The repository caps the limit defensively.
func (s *Service) List(ctx context.Context, input types.ListInput) ([]*domain.Project, error) {
	skip := input.Skip
	if skip < 0 {
		skip = 0
	}
	filter := ports.ListFilter{
		Status:        input.Status,
		ClientID:      input.ClientID,
		ResponsibleID: input.ResponsibleID,
	}
	projects, err := s.repo.List(ctx, filter, skip, input.Limit)
	if err != nil {
		return nil, mapError(err)
	}
	return projects, nil
}

// ListByCursor pages by keyset. The cursor token is opaque to callers.
func (s *Service) ListByCursor(ctx context.Context, input types.CursorListInput) (*types.CursorPage, error) {
	filter := ports.ListFilter{
		Status:   input.Status,
		ClientID: input.ClientID,
	}
	projects, nextID, err := s.repo.ListAfter(ctx, filter, decodeCursor(input.Cursor), input.Limit)
	if err != nil {
		return nil, mapError(err)
	}
	page := &types.CursorPage{Projects: projects}
	if nextID != nil {
		page.NextCursor = encodeCursor(*nextID)
	}
	return page, nil
}

// Update applies a partial edit under the domain's modifiability rule.
func (s *Service) Update(ctx context.Context, id int64, input types.UpdateProjectInput) (*domain.Project, error) {
	return s.mutate(ctx, id, func(p *domain.Project) error {
		return p.UpdateDetails(domain.Update{
			Name:           input.Name,
			Description:    input.Description,
			PlannedEnd:     input.PlannedEnd,
			Observations:   input.Observations,
			EstimatedValue: input.EstimatedValue,
			ContributorIDs: input.ContributorIDs,
		})
	})
}

// Start transitions the project into progress.
func (s *Service) Start(ctx context.Context, id int64) (*domain.Project, error) {
	return s.mutate(ctx, id, func(p *domain.Project) error { return p.Start() })
}

// Pause suspends an in-progress project.
func (s *Service) Pause(ctx context.Context, id int64) (*domain.Project, error) {
	return s.mutate(ctx, id, func(p *domain.Project) error { return p.Pause() })
}

// Complete finishes the project, recording the actual end date.
func (s *Service) Complete(ctx context.Context, id int64, input types.CompleteProjectInput) (*domain.Project, error) {
	return s.mutate(ctx, id, func(p *domain.Project) error { return p.Complete(input.CompletedOn) })
}

// Cancel aborts the project, keeping the reason as a structured note.
func (s *Service) Cancel(ctx context.Context, id int64, input types.CancelProjectInput) (*domain.Project, error) {
	return s.mutate(ctx, id, func(p *domain.Project) error { return p.Cancel(input.Reason, input.Author) })
}

// Delete soft-deletes the project; force runs the cascading physical purge
// instead. Either way the whole operation commits or rolls back as a unit.
func (s *Service) Delete(ctx context.Context, id int64, force bool) error {
	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer uow.Close()

	var found bool
	if force {
		found, err = uow.Projects().Purge(ctx, id)
	} else {
		found, err = uow.Projects().Delete(ctx, id)
	}
	if err != nil {
		return mapError(err)
	}
	if !found {
		return ports.ErrNotFound
	}
	return mapError(uow.Commit())
}

// Overdue lists in-progress projects past their planned end date.
func (s *Service) Overdue(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.repo.Overdue(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return projects, nil
}

// Statistics counts projects per status plus derived totals. Recomputed on
// every call; deliberately not cached.
func (s *Service) Statistics(ctx context.Context) (*types.Statistics, error) {
	stats := &types.Statistics{ByStatus: make(map[domain.Status]int64, len(domain.Statuses))}
	for _, status := range domain.Statuses {
		count, err := s.repo.CountByStatus(ctx, status)
		if err != nil {
			return nil, mapError(err)
		}
		stats.ByStatus[status] = count
	}
	stats.TotalActive = stats.ByStatus[domain.StatusInProgress]

	overdue, err := s.repo.Overdue(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	stats.TotalOverdue = int64(len(overdue))
	return stats, nil
}

// mutate runs fetch -> domain operation -> save inside one scope. Domain
// errors propagate unchanged and leave the stored project untouched.
func (s *Service) mutate(ctx context.Context, id int64, op func(*domain.Project) error) (*domain.Project, error) {
	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	defer uow.Close()

	project, err := uow.Projects().GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := op(project); err != nil {
		return nil, mapError(err)
	}
	saved, err := uow.Projects().Save(ctx, project)
	if err != nil {
		return nil, mapError(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}
