package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/clockline/clockline/internal/domains/projects/domain"
	"github.com/clockline/clockline/internal/domains/projects/ports"
)

var (
	_ ports.TransactionManager = (*TransactionManager)(nil)
	_ ports.UnitOfWork         = (*unitOfWork)(nil)
)

// TransactionManager hands out snapshot-isolated scopes over a shared
// in-memory repository. Writes inside a scope stay invisible to the base
// repository until Commit.
type TransactionManager struct {
	base *Repository
}

func NewTransactionManager(base *Repository) *TransactionManager {
	return &TransactionManager{base: base}
}

func (m *TransactionManager) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scratch := m.base.snapshot()
	scratch.allocID = m.base.reserveID
	return &unitOfWork{
		id:      uuid.NewString(),
		base:    m.base,
		scratch: scratch,
		written: map[int64]bool{},
		purged:  map[int64]bool{},
	}, nil
}

type unitOfWork struct {
	mu        sync.Mutex
	id        string
	base      *Repository
	scratch   *Repository
	repo      ports.Repository
	written   map[int64]bool
	purged    map[int64]bool
	closed    bool
	committed bool
}

func (u *unitOfWork) ID() string {
	return u.id
}

func (u *unitOfWork) Projects() ports.Repository {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.repo == nil {
		u.repo = &scopedRepository{uow: u}
	}
	return u.repo
}

func (u *unitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ports.ErrScopeClosed
	}
	u.base.merge(u.scratch, u.written, u.purged)
	u.closed = true
	u.committed = true
	return nil
}

func (u *unitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ports.ErrScopeClosed
	}
	u.closed = true
	return nil
}

// Flush is a consistency check only. Scope writes apply to the snapshot
// immediately, so there is nothing buffered to push.
func (u *unitOfWork) Flush() error {
	return u.active()
}

// Close discards uncommitted work. Safe to call repeatedly.
func (u *unitOfWork) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.closed = true
	return nil
}

func (u *unitOfWork) active() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ports.ErrScopeClosed
	}
	return nil
}

func (u *unitOfWork) recordWrite(id int64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.written[id] = true
	delete(u.purged, id)
}

func (u *unitOfWork) recordPurge(id int64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.purged[id] = true
	delete(u.written, id)
}

// scopedRepository guards snapshot access behind the scope lifecycle.
type scopedRepository struct {
	uow *unitOfWork
}

var _ ports.Repository = (*scopedRepository)(nil)

func (s *scopedRepository) Save(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if err := s.uow.active(); err != nil {
		return nil, err
	}
	saved, err := s.uow.scratch.Save(ctx, p)
	if err != nil {
		return nil, err
	}
	s.uow.recordWrite(saved.ID)
	return saved, nil
}

func (s *scopedRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	if err := s.uow.active(); err != nil {
		return nil, err
	}
	return s.uow.scratch.GetByID(ctx, id)
}

func (s *scopedRepository) List(ctx context.Context, f ports.ListFilter, skip, limit int) ([]*domain.Project, error) {
	if err := s.uow.active(); err != nil {
		return nil, err
	}
	return s.uow.scratch.List(ctx, f, skip, limit)
}

func (s *scopedRepository) ListAfter(ctx context.Context, f ports.ListFilter, afterID int64, limit int) ([]*domain.Project, *int64, error) {
	if err := s.uow.active(); err != nil {
		return nil, nil, err
	}
	return s.uow.scratch.ListAfter(ctx, f, afterID, limit)
}

func (s *scopedRepository) Overdue(ctx context.Context) ([]*domain.Project, error) {
	if err := s.uow.active(); err != nil {
		return nil, err
	}
	return s.uow.scratch.Overdue(ctx)
}

func (s *scopedRepository) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	if err := s.uow.active(); err != nil {
		return 0, err
	}
	return s.uow.scratch.CountByStatus(ctx, status)
}

func (s *scopedRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := s.uow.active(); err != nil {
		return false, err
	}
	ok, err := s.uow.scratch.Delete(ctx, id)
	if err == nil && ok {
		s.uow.recordWrite(id)
	}
	return ok, err
}

func (s *scopedRepository) Purge(ctx context.Context, id int64) (bool, error) {
	if err := s.uow.active(); err != nil {
		return false, err
	}
	ok, err := s.uow.scratch.Purge(ctx, id)
	if err == nil && ok {
		s.uow.recordPurge(id)
	}
	return ok, err
}
