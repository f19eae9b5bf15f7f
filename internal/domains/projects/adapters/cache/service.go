// Package cache decorates the projects service with a Redis cache-aside
// layer. Reads check the cache before the inner service; mutations pass
// through and invalidate every entry the change could have staled.
package cache

import (
	"context"

	types "github.com/clockline/clockline/internal/domains/projects/application/types"
	"github.com/clockline/clockline/internal/domains/projects/domain"
	"github.com/clockline/clockline/internal/domains/projects/ports"
	"github.com/clockline/clockline/internal/shared/cache"
)

var _ ports.Service = (*Service)(nil)

// Service wraps an inner service with read-through caching.
type Service struct {
	inner ports.Service
	cache *cache.Cache
}

// New wraps the core projects service. A degraded cache (nil Redis client)
// turns every call into a pass-through.
func New(inner ports.Service, c *cache.Cache) *Service {
	return &Service{inner: inner, cache: c}
}

func (s *Service) Create(ctx context.Context, input types.CreateProjectInput) (*domain.Project, error) {
	created, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Project, error) {
	var snap projectSnapshot
	if s.cache.Get(ctx, projectKey(id), &snap) {
		return snap.toDomain(), nil
	}
	project, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, projectKey(id), toSnapshot(project), 0)
	return project, nil
}

func (s *Service) List(ctx context.Context, input types.ListInput) ([]*domain.Project, error) {
	key := listKey(input.Skip, input.Limit, input.Status, input.ClientID, input.ResponsibleID)
	var snaps []projectSnapshot
	if s.cache.Get(ctx, key, &snaps) {
		return toDomainSlice(snaps), nil
	}
	projects, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, toSnapshotSlice(projects), 0)
	return projects, nil
}

func (s *Service) ListByCursor(ctx context.Context, input types.CursorListInput) (*types.CursorPage, error) {
	key := cursorKey(input.Cursor, input.Limit, input.Status, input.ClientID)
	var snap pageSnapshot
	if s.cache.Get(ctx, key, &snap) {
		return &types.CursorPage{Projects: toDomainSlice(snap.Projects), NextCursor: snap.NextCursor}, nil
	}
	page, err := s.inner.ListByCursor(ctx, input)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, pageSnapshot{Projects: toSnapshotSlice(page.Projects), NextCursor: page.NextCursor}, 0)
	return page, nil
}

func (s *Service) Update(ctx context.Context, id int64, input types.UpdateProjectInput) (*domain.Project, error) {
	updated, err := s.inner.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidateProject(ctx, id)
	return updated, nil
}

func (s *Service) Start(ctx context.Context, id int64) (*domain.Project, error) {
	started, err := s.inner.Start(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateProject(ctx, id)
	return started, nil
}

func (s *Service) Pause(ctx context.Context, id int64) (*domain.Project, error) {
	paused, err := s.inner.Pause(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateProject(ctx, id)
	return paused, nil
}

func (s *Service) Complete(ctx context.Context, id int64, input types.CompleteProjectInput) (*domain.Project, error) {
	completed, err := s.inner.Complete(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidateProject(ctx, id)
	return completed, nil
}

func (s *Service) Cancel(ctx context.Context, id int64, input types.CancelProjectInput) (*domain.Project, error) {
	cancelled, err := s.inner.Cancel(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidateProject(ctx, id)
	return cancelled, nil
}

func (s *Service) Delete(ctx context.Context, id int64, force bool) error {
	if err := s.inner.Delete(ctx, id, force); err != nil {
		return err
	}
	s.invalidateProject(ctx, id)
	return nil
}

func (s *Service) Overdue(ctx context.Context) ([]*domain.Project, error) {
	var snaps []projectSnapshot
	if s.cache.Get(ctx, overdueKey, &snaps) {
		return toDomainSlice(snaps), nil
	}
	projects, err := s.inner.Overdue(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, overdueKey, toSnapshotSlice(projects), 0)
	return projects, nil
}

// Statistics is deliberately never cached: the numbers back dashboards that
// expect fresh counts, and the queries are cheap per-status aggregates.
func (s *Service) Statistics(ctx context.Context) (*types.Statistics, error) {
	return s.inner.Statistics(ctx)
}

func (s *Service) invalidateProject(ctx context.Context, id int64) {
	s.cache.Delete(ctx, projectKey(id))
	s.invalidateListings(ctx)
}

func (s *Service) invalidateListings(ctx context.Context) {
	s.cache.DeletePattern(ctx, listKeyPattern)
	s.cache.DeletePattern(ctx, cursorKeyPattern)
	s.cache.Delete(ctx, overdueKey)
}
