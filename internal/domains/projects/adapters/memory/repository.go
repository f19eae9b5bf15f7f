package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clockline/clockline/internal/domains/projects/domain"
	"github.com/clockline/clockline/internal/domains/projects/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps project aggregates in memory for development and tests.
type Repository struct {
	mu       sync.RWMutex
	projects map[int64]*domain.Project
	nextID   int64
	now      func() time.Time

	// allocID, when set, sources new IDs from elsewhere. Transaction
	// snapshots point it at the shared base so concurrent scopes never
	// hand out the same ID.
	allocID func() int64
}

// NewRepository constructs an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		projects: map[int64]*domain.Project{},
		nextID:   1,
		now:      time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Save upserts by ID presence, mirroring the persistence contract.
func (r *Repository) Save(_ context.Context, p *domain.Project) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	stored := cloneProject(p)
	if p.ID == 0 {
		if r.allocID != nil {
			stored.ID = r.allocID()
		} else {
			stored.ID = r.nextID
			r.nextID++
		}
		stored.CreatedAt = now
		stored.UpdatedAt = now
	} else {
		existing, ok := r.projects[p.ID]
		if !ok || existing.DeletedAt != nil {
			return nil, ports.ErrNotFound
		}
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = now
	}
	r.projects[stored.ID] = stored
	return cloneProject(stored), nil
}

// GetByID returns a live project or ErrNotFound.
func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok || p.DeletedAt != nil {
		return nil, ports.ErrNotFound
	}
	return cloneProject(p), nil
}

// List pages live projects by offset, capped at MaxPageSize.
func (r *Repository) List(_ context.Context, f ports.ListFilter, skip, limit int) ([]*domain.Project, error) {
	limit = capLimit(limit)

	rows := r.liveSorted(f, 0)
	if skip >= len(rows) {
		return []*domain.Project{}, nil
	}
	rows = rows[skip:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// ListAfter pages live projects by keyset, strictly ascending by ID.
func (r *Repository) ListAfter(_ context.Context, f ports.ListFilter, afterID int64, limit int) ([]*domain.Project, *int64, error) {
	limit = capLimit(limit)

	rows := r.liveSorted(f, afterID)
	if len(rows) <= limit {
		return rows, nil, nil
	}
	rows = rows[:limit]
	nextID := rows[len(rows)-1].ID
	return rows, &nextID, nil
}

// Overdue returns in-progress projects past their planned end date.
func (r *Repository) Overdue(_ context.Context) ([]*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	today := dateOf(r.now())
	out := []*domain.Project{}
	for _, p := range r.projects {
		if p.DeletedAt != nil || p.Status != domain.StatusInProgress {
			continue
		}
		if p.PlannedEnd != nil && p.PlannedEnd.Before(today) {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CountByStatus counts live projects in the given status.
func (r *Repository) CountByStatus(_ context.Context, status domain.Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.projects {
		if p.DeletedAt == nil && p.Status == status {
			n++
		}
	}
	return n, nil
}

// Delete soft-deletes a live project.
func (r *Repository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	now := r.now()
	p.DeletedAt = &now
	p.UpdatedAt = now
	return true, nil
}

// Purge physically removes the project, soft-deleted or not. The in-memory
// store holds no dependent rows; the cascade only matters in Postgres.
func (r *Repository) Purge(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return false, nil
	}
	delete(r.projects, id)
	return true, nil
}

func (r *Repository) liveSorted(f ports.ListFilter, afterID int64) []*domain.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Project{}
	for _, p := range r.projects {
		if p.DeletedAt != nil || p.ID <= afterID || !matchesFilter(p, f) {
			continue
		}
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchesFilter(p *domain.Project, f ports.ListFilter) bool {
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.ClientID != nil && p.ClientID != *f.ClientID {
		return false
	}
	if f.ResponsibleID != nil && p.ResponsibleID != *f.ResponsibleID {
		return false
	}
	return true
}

func capLimit(limit int) int {
	if limit <= 0 {
		return ports.DefaultPageSize
	}
	if limit > ports.MaxPageSize {
		return ports.MaxPageSize
	}
	return limit
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneProject(p *domain.Project) *domain.Project {
	c := *p
	if p.PlannedEnd != nil {
		v := *p.PlannedEnd
		c.PlannedEnd = &v
	}
	if p.ActualEnd != nil {
		v := *p.ActualEnd
		c.ActualEnd = &v
	}
	if p.DeletedAt != nil {
		v := *p.DeletedAt
		c.DeletedAt = &v
	}
	if p.ContributorIDs != nil {
		c.ContributorIDs = append([]int64{}, p.ContributorIDs...)
	}
	if p.Notes != nil {
		c.Notes = append([]domain.Note{}, p.Notes...)
	}
	return &c
}

// snapshot deep-copies the repository state for a transaction scope.
func (r *Repository) snapshot() *Repository {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := make(map[int64]*domain.Project, len(r.projects))
	for id, p := range r.projects {
		copied[id] = cloneProject(p)
	}
	return &Repository{projects: copied, nextID: r.nextID, now: r.now}
}

// reserveID hands out the next ID from the shared counter. Scopes burn
// an ID even when they later roll back, like a database sequence.
func (r *Repository) reserveID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	return id
}

// merge applies a scope's writes and purges atomically. Only rows the
// scope actually touched move over, so commits from overlapping scopes
// do not clobber each other's unrelated rows.
func (r *Repository) merge(scratch *Repository, written, purged map[int64]bool) {
	scratch.mu.RLock()
	rows := make(map[int64]*domain.Project, len(written))
	for id := range written {
		if p, ok := scratch.projects[id]; ok {
			rows[id] = cloneProject(p)
		}
	}
	scratch.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range rows {
		r.projects[id] = p
	}
	for id := range purged {
		delete(r.projects, id)
	}
}
