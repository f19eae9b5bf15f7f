package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clockline/clockline/internal/domains/projects/domain"
	"github.com/clockline/clockline/internal/domains/projects/ports"
)

var (
	_ ports.TransactionManager = (*TransactionManager)(nil)
	_ ports.UnitOfWork         = (*unitOfWork)(nil)
)

// TransactionManager opens database transaction scopes. Each scope wraps one
// GORM transaction and a repository bound to it.
type TransactionManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTransactionManager wires a transaction manager over an open connection.
func NewTransactionManager(db *gorm.DB, logger *slog.Logger) *TransactionManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TransactionManager{db: db, logger: logger}
}

// Begin starts a transaction and returns its scope.
func (m *TransactionManager) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	if m == nil || m.db == nil {
		return nil, errors.New("postgres transaction manager not configured")
	}
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, &ports.StorageError{Op: "begin", Err: tx.Error}
	}
	id := uuid.NewString()
	m.logger.Debug("transaction scope opened", slog.String("scope_id", id))
	return &unitOfWork{
		id:     id,
		tx:     tx,
		repo:   NewRepository(tx),
		logger: m.logger,
	}, nil
}

type unitOfWork struct {
	mu     sync.Mutex
	id     string
	tx     *gorm.DB
	repo   *Repository
	scoped ports.Repository
	logger *slog.Logger
	closed bool
}

func (u *unitOfWork) ID() string {
	return u.id
}

func (u *unitOfWork) Projects() ports.Repository {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.scoped == nil {
		u.scoped = &scopedRepository{uow: u}
	}
	return u.scoped
}

// Commit finishes the transaction. On failure the transaction is rolled back
// and the scope closes either way.
func (u *unitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ports.ErrScopeClosed
	}
	u.closed = true
	if err := u.tx.Commit().Error; err != nil {
		_ = u.tx.Rollback()
		u.logger.Warn("transaction commit failed", slog.String("scope_id", u.id), slog.String("error", err.Error()))
		return &ports.StorageError{Op: "commit", Err: err}
	}
	u.logger.Debug("transaction scope committed", slog.String("scope_id", u.id))
	return nil
}

// Rollback discards the scope's work.
func (u *unitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ports.ErrScopeClosed
	}
	u.closed = true
	if err := u.tx.Rollback().Error; err != nil {
		return &ports.StorageError{Op: "rollback", Err: err}
	}
	u.logger.Debug("transaction scope rolled back", slog.String("scope_id", u.id))
	return nil
}

// Flush verifies the scope is still usable. Statements execute eagerly inside
// the transaction, so there is no buffered work to push.
func (u *unitOfWork) Flush() error {
	return u.active()
}

// Close rolls back anything uncommitted. Safe to call repeatedly, which makes
// it the natural defer companion to Begin.
func (u *unitOfWork) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return nil
	}
	u.closed = true
	if err := u.tx.Rollback().Error; err != nil {
		return &ports.StorageError{Op: "close", Err: err}
	}
	u.logger.Debug("transaction scope closed without commit", slog.String("scope_id", u.id))
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

// scopedRepository rejects use of a finished scope before touching the
// underlying transaction.
type scopedRepository struct {
	uow *unitOfWork
}

var _ ports.Repository = (*scopedRepository)(nil)

func (s *scopedRepository) Save(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if err := s.uow.active(); err != nil {
		return nil, err
	}
	return s.uow.repo.Save(ctx, p)
}

func (s *scopedRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	if err := s.uow.active(); err != nil {
		return nil, err
	}
	return s.uow.repo.GetByID(ctx, id)
}

func (s *scopedRepository) List(ctx context.Context, f ports.ListFilter, skip, limit int) ([]*domain.Project, error) {
	if err := s.uow.active(); err != nil {
		return nil, err
	}
	return s.uow.repo.List(ctx, f, skip, limit)
}

func (s *scopedRepository) ListAfter(ctx context.Context, f ports.ListFilter, afterID int64, limit int) ([]*domain.Project, *int64, error) {
	if err := s.uow.active(); err != nil {
		return nil, nil, err
	}
	return s.uow.repo.ListAfter(ctx, f, afterID, limit)
}

func (s *scopedRepository) Overdue(ctx context.Context) ([]*domain.Project, error) {
	if err := s.uow.active(); err != nil {
		return nil, err
	}
	return s.uow.repo.Overdue(ctx)
}

func (s *scopedRepository) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	if err := s.uow.active(); err != nil {
		return 0, err
	}
	return s.uow.repo.CountByStatus(ctx, status)
}

func (s *scopedRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := s.uow.active(); err != nil {
		return false, err
	}
	return s.uow.repo.Delete(ctx, id)
}

func (s *scopedRepository) Purge(ctx context.Context, id int64) (bool, error) {
	if err := s.uow.active(); err != nil {
		return false, err
	}
	return s.uow.repo.Purge(ctx, id)
}
