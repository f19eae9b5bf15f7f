package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockline/clockline/internal/domains/projects/domain"
	"github.com/clockline/clockline/internal/domains/projects/ports"
)

func newScope(t *testing.T, tm *TransactionManager) ports.UnitOfWork {
	t.Helper()
	uow, err := tm.Begin(context.Background())
	require.NoError(t, err)
	return uow
}

func TestScopeIDsAreUnique(t *testing.T) {
	tm := NewTransactionManager(NewRepository())

	a := newScope(t, tm)
	b := newScope(t, tm)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestCommitPublishesWrites(t *testing.T) {
	base := NewRepository()
	tm := NewTransactionManager(base)

	uow := newScope(t, tm)
	p, err := domain.NewProject("Committed", 1, 1, date(2025, 1, 1), nil)
	require.NoError(t, err)
	saved, err := uow.Projects().Save(context.Background(), p)
	require.NoError(t, err)

	// Not visible outside the scope before commit.
	_, err = base.GetByID(context.Background(), saved.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, uow.Commit())

	got, err := base.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Committed", got.Name)
}

func TestCloseWithoutCommitDiscardsEverything(t *testing.T) {
	base := NewRepository()
	tm := NewTransactionManager(base)

	uow := newScope(t, tm)
	for i := 0; i < 3; i++ {
		p, err := domain.NewProject("Abandoned", 1, 1, date(2025, 1, 1), nil)
		require.NoError(t, err)
		_, err = uow.Projects().Save(context.Background(), p)
		require.NoError(t, err)
	}
	require.NoError(t, uow.Close())

	page, err := base.List(context.Background(), ports.ListFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestReadYourWrites(t *testing.T) {
	tm := NewTransactionManager(NewRepository())

	uow := newScope(t, tm)
	defer func() { _ = uow.Close() }()

	p, err := domain.NewProject("Visible inside", 1, 1, date(2025, 1, 1), nil)
	require.NoError(t, err)
	saved, err := uow.Projects().Save(context.Background(), p)
	require.NoError(t, err)

	got, err := uow.Projects().GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Visible inside", got.Name)
}

func TestScopeSeesStateAtBegin(t *testing.T) {
	base := NewRepository()
	tm := NewTransactionManager(base)
	seedProject(t, base, "Pre-existing", 1)

	uow := newScope(t, tm)
	defer func() { _ = uow.Close() }()

	// A write to the base after Begin is not seen by the scope.
	seedProject(t, base, "Arrived later", 1)

	page, err := uow.Projects().List(context.Background(), ports.ListFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Pre-existing", page[0].Name)
}

func TestRollbackThenUseFails(t *testing.T) {
	tm := NewTransactionManager(NewRepository())

	uow := newScope(t, tm)
	repo := uow.Projects()
	require.NoError(t, uow.Rollback())

	p, err := domain.NewProject("Too late", 1, 1, date(2025, 1, 1), nil)
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), p)
	assert.ErrorIs(t, err, ports.ErrScopeClosed)

	_, err = repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ports.ErrScopeClosed)

	assert.ErrorIs(t, uow.Commit(), ports.ErrScopeClosed)
	assert.ErrorIs(t, uow.Rollback(), ports.ErrScopeClosed)
	assert.ErrorIs(t, uow.Flush(), ports.ErrScopeClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	tm := NewTransactionManager(NewRepository())

	uow := newScope(t, tm)
	require.NoError(t, uow.Close())
	require.NoError(t, uow.Close())
}

func TestCommitThenCloseIsFine(t *testing.T) {
	base := NewRepository()
	tm := NewTransactionManager(base)

	uow := newScope(t, tm)
	p, err := domain.NewProject("Kept", 1, 1, date(2025, 1, 1), nil)
	require.NoError(t, err)
	saved, err := uow.Projects().Save(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Close())

	_, err = base.GetByID(context.Background(), saved.ID)
	assert.NoError(t, err)
}

func TestFlushOnActiveScope(t *testing.T) {
	tm := NewTransactionManager(NewRepository())

	uow := newScope(t, tm)
	defer func() { _ = uow.Close() }()
	assert.NoError(t, uow.Flush())
}

func TestOverlappingScopesKeepEachOthersCommits(t *testing.T) {
	base := NewRepository()
	tm := NewTransactionManager(base)

	first := newScope(t, tm)
	second := newScope(t, tm)

	pa, err := domain.NewProject("From first scope", 1, 1, date(2025, 1, 1), nil)
	require.NoError(t, err)
	savedA, err := first.Projects().Save(context.Background(), pa)
	require.NoError(t, err)

	pb, err := domain.NewProject("From second scope", 2, 2, date(2025, 2, 1), nil)
	require.NoError(t, err)
	savedB, err := second.Projects().Save(context.Background(), pb)
	require.NoError(t, err)

	assert.NotEqual(t, savedA.ID, savedB.ID)

	require.NoError(t, first.Commit())
	require.NoError(t, second.Commit())

	// The second commit must not wipe out the first scope's project.
	gotA, err := base.GetByID(context.Background(), savedA.ID)
	require.NoError(t, err)
	assert.Equal(t, "From first scope", gotA.Name)

	gotB, err := base.GetByID(context.Background(), savedB.ID)
	require.NoError(t, err)
	assert.Equal(t, "From second scope", gotB.Name)

	page, err := base.List(context.Background(), ports.ListFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestScopePurgeOnlyRemovesItsTarget(t *testing.T) {
	base := NewRepository()
	tm := NewTransactionManager(base)
	victim := seedProject(t, base, "Victim", 1)
	bystander := seedProject(t, base, "Bystander", 1)

	uow := newScope(t, tm)
	ok, err := uow.Projects().Purge(context.Background(), victim.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, uow.Commit())

	_, err = base.GetByID(context.Background(), victim.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = base.GetByID(context.Background(), bystander.ID)
	assert.NoError(t, err)
}

func TestNextIDSurvivesCommit(t *testing.T) {
	base := NewRepository()
	tm := NewTransactionManager(base)

	uow := newScope(t, tm)
	p, err := domain.NewProject("First", 1, 1, date(2025, 1, 1), nil)
	require.NoError(t, err)
	first, err := uow.Projects().Save(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	second := seedProject(t, base, "Second", 1)
	assert.Equal(t, first.ID+1, second.ID)
}
