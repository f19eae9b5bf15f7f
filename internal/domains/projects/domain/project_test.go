package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestNewProject_Valid(t *testing.T) {
	p, err := NewProject("Website relaunch", 1, 2, date(2025, 1, 1), datePtr(2025, 1, 10))
	require.NoError(t, err)
	require.Equal(t, StatusPlanning, p.Status)
	require.Equal(t, int64(1), p.ClientID)
	require.Equal(t, int64(2), p.ResponsibleID)
	require.Zero(t, p.ID)
	require.True(t, p.CreatedAt.IsZero())
}

func TestNewProject_TrimsName(t *testing.T) {
	p, err := NewProject("  padded  ", 1, 2, date(2025, 1, 1), nil)
	require.NoError(t, err)
	require.Equal(t, "padded", p.Name)
}

func TestNewProject_RejectsBadName(t *testing.T) {
	_, err := NewProject("   ", 1, 2, date(2025, 1, 1), nil)
	require.ErrorIs(t, err, ErrEmptyName)

	long := make([]rune, MaxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = NewProject(string(long), 1, 2, date(2025, 1, 1), nil)
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestNewProject_RejectsDateOrder(t *testing.T) {
	_, err := NewProject("p", 1, 2, date(2025, 1, 10), datePtr(2025, 1, 1))
	require.ErrorIs(t, err, ErrDateOrder)

	// Equal dates are fine.
	_, err = NewProject("p", 1, 2, date(2025, 1, 10), datePtr(2025, 1, 10))
	require.NoError(t, err)
}

func mustProject(t *testing.T, status Status) *Project {
	t.Helper()
	p, err := NewProject("p", 1, 2, date(2025, 1, 1), datePtr(2025, 1, 10))
	require.NoError(t, err)
	p.Status = status
	return p
}

func TestStart_TransitionTable(t *testing.T) {
	cases := []struct {
		from Status
		ok   bool
	}{
		{StatusPlanning, true},
		{StatusPaused, true},
		{StatusInProgress, false},
		{StatusCompleted, false},
		{StatusCancelled, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			p := mustProject(t, tc.from)
			err := p.Start()
			if tc.ok {
				require.NoError(t, err)
				require.Equal(t, StatusInProgress, p.Status)
				return
			}
			require.ErrorIs(t, err, ErrInvalidTransition)
			require.Equal(t, tc.from, p.Status)

			var te *TransitionError
			require.ErrorAs(t, err, &te)
			require.Equal(t, tc.from, te.From)
			require.Equal(t, "start", te.Op)
		})
	}
}

func TestPause_OnlyFromInProgress(t *testing.T) {
	for _, from := range Statuses {
		p := mustProject(t, from)
		err := p.Pause()
		if from == StatusInProgress {
			require.NoError(t, err)
			require.Equal(t, StatusPaused, p.Status)
		} else {
			require.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
}

func TestComplete_SetsActualEnd(t *testing.T) {
	p := mustProject(t, StatusInProgress)
	require.NoError(t, p.Complete(date(2025, 1, 15)))
	require.Equal(t, StatusCompleted, p.Status)
	require.NotNil(t, p.ActualEnd)
	require.Equal(t, date(2025, 1, 15), *p.ActualEnd)
}

func TestComplete_DefaultsToToday(t *testing.T) {
	p := mustProject(t, StatusInProgress)
	require.NoError(t, p.Complete(time.Time{}))
	require.NotNil(t, p.ActualEnd)
	require.False(t, p.ActualEnd.IsZero())
}

func TestComplete_OnlyFromInProgress(t *testing.T) {
	for _, from := range []Status{StatusPlanning, StatusPaused, StatusCompleted, StatusCancelled} {
		p := mustProject(t, from)
		require.ErrorIs(t, p.Complete(date(2025, 1, 15)), ErrInvalidTransition)
		require.Nil(t, p.ActualEnd)
	}
}

func TestCancel_Matrix(t *testing.T) {
	for _, from := range []Status{StatusPlanning, StatusInProgress, StatusPaused} {
		p := mustProject(t, from)
		require.NoError(t, p.Cancel("out of budget", "ana"))
		require.Equal(t, StatusCancelled, p.Status)
		require.Len(t, p.Notes, 1)
		require.Equal(t, "out of budget", p.Notes[0].Text)
		require.Equal(t, "ana", p.Notes[0].Author)
		require.False(t, p.Notes[0].At.IsZero())
	}

	p := mustProject(t, StatusCompleted)
	require.ErrorIs(t, p.Cancel("too late", ""), ErrInvalidTransition)
}

// Re-cancelling an already-cancelled project is allowed; it stays cancelled
// and keeps accumulating notes.
func TestCancel_Idempotent(t *testing.T) {
	p := mustProject(t, StatusCancelled)
	require.NoError(t, p.Cancel("second thoughts", ""))
	require.Equal(t, StatusCancelled, p.Status)
	require.Len(t, p.Notes, 1)
}

func TestCancel_NoNoteWithoutReason(t *testing.T) {
	p := mustProject(t, StatusPlanning)
	require.NoError(t, p.Cancel("   ", ""))
	require.Empty(t, p.Notes)
}

func strPtr(s string) *string { return &s }

func TestUpdateDetails_Partial(t *testing.T) {
	p := mustProject(t, StatusPlanning)
	p.Description = "original"

	require.NoError(t, p.UpdateDetails(Update{Name: strPtr("renamed")}))
	require.Equal(t, "renamed", p.Name)
	require.Equal(t, "original", p.Description, "absent fields stay untouched")
}

func TestUpdateDetails_RevalidatesDates(t *testing.T) {
	p := mustProject(t, StatusInProgress)
	err := p.UpdateDetails(Update{PlannedEnd: datePtr(2024, 12, 1)})
	require.ErrorIs(t, err, ErrDateOrder)
	require.Equal(t, date(2025, 1, 10), *p.PlannedEnd)
}

func TestUpdateDetails_TerminalStatesRejected(t *testing.T) {
	for _, from := range []Status{StatusCompleted, StatusCancelled} {
		p := mustProject(t, from)
		require.ErrorIs(t, p.UpdateDetails(Update{Name: strPtr("x")}), ErrNotModifiable)
	}
}

func TestUpdateDetails_CopiesContributors(t *testing.T) {
	p := mustProject(t, StatusPlanning)
	ids := []int64{4, 5}
	require.NoError(t, p.UpdateDetails(Update{ContributorIDs: &ids}))
	ids[0] = 99
	require.Equal(t, []int64{4, 5}, p.ContributorIDs)
}

func TestDerivedProperties(t *testing.T) {
	p := mustProject(t, StatusInProgress)
	require.True(t, p.IsActive())
	require.True(t, p.IsOverdue(date(2025, 1, 11)))
	require.False(t, p.IsOverdue(date(2025, 1, 10)))

	now := time.Now()
	p.DeletedAt = &now
	require.False(t, p.IsActive())
	require.False(t, p.IsOverdue(date(2025, 2, 1)))

	_, ok := p.DurationDays()
	require.False(t, ok)
}

func TestEqual_ByIdentity(t *testing.T) {
	a := mustProject(t, StatusPlanning)
	b := mustProject(t, StatusPlanning)
	require.False(t, a.Equal(b), "unsaved projects never compare equal")

	a.ID, b.ID = 7, 7
	b.Name = "different name"
	require.True(t, a.Equal(b))

	b.ID = 8
	require.False(t, a.Equal(b))
	require.False(t, a.Equal(nil))
}

// Full lifecycle: plan -> start -> pause -> start -> complete, then the
// project refuses edits and reports its duration from the original start.
func TestLifecycleScenario(t *testing.T) {
	p, err := NewProject("rollout", 1, 2, date(2025, 1, 1), datePtr(2025, 1, 10))
	require.NoError(t, err)

	require.NoError(t, p.Start())
	require.NoError(t, p.Pause())
	require.NoError(t, p.Start())
	require.NoError(t, p.Complete(date(2025, 1, 15)))

	require.Equal(t, StatusCompleted, p.Status)
	days, ok := p.DurationDays()
	require.True(t, ok)
	require.Equal(t, 14, days)

	require.ErrorIs(t, p.UpdateDetails(Update{Name: strPtr("renamed")}), ErrNotModifiable)
}
