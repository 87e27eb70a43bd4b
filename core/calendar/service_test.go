package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/calendar"
	inmemdb "github.com/semsync/semsync/storage/database/inmem"
)

func setup(t *testing.T) (*calendar.Service, calendar.Repository) {
	t.Helper()
	repo := inmemdb.NewCalendarRepository(inmemdb.Open())
	return calendar.NewService(repo), repo
}

// tick makes NowFunc return strictly increasing instants.
func tick(t *testing.T) {
	t.Helper()
	now := time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)
	calendar.NowFunc = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	t.Cleanup(func() { calendar.NowFunc = time.Now })
}

func TestService_CreateThenList(t *testing.T) {
	tick(t)
	svc, _ := setup(t)
	ctx := context.Background()
	owner := uuid.New().String()

	created, err := svc.CreateTask(ctx, owner, calendar.NewTask{Task: "  revise algebra ", Date: "Thu Feb 29 2024"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "revise algebra", created.Text)
	assert.Equal(t, "2024-02-29", created.Date.String())
	assert.False(t, created.Completed)

	tasks, err := svc.ListTasksForDate(ctx, owner, "2024-02-29")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created, tasks[0])
}

func TestService_ListTasksForDate(t *testing.T) {
	tick(t)
	svc, _ := setup(t)
	ctx := context.Background()
	owner, other := uuid.New().String(), uuid.New().String()

	first, err := svc.CreateTask(ctx, owner, calendar.NewTask{Task: "first", Date: "2024-02-10"})
	require.NoError(t, err)
	second, err := svc.CreateTask(ctx, owner, calendar.NewTask{Task: "second", Date: "2024-02-10"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, owner, calendar.NewTask{Task: "next day", Date: "2024-02-11"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, other, calendar.NewTask{Task: "not mine", Date: "2024-02-10"})
	require.NoError(t, err)

	tasks, err := svc.ListTasksForDate(ctx, owner, "2024-02-10")
	require.NoError(t, err)
	assert.Equal(t, []calendar.Task{first, second}, tasks)

	empty, err := svc.ListTasksForDate(ctx, owner, "2024-02-12")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.ListTasksForDate(ctx, owner, "lol")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestService_CreateTask_invalid(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	owner := uuid.New().String()

	tests := []struct {
		name    string
		nt      calendar.NewTask
		wantErr error
	}{
		{name: "empty text", nt: calendar.NewTask{Task: "", Date: "2024-02-10"}, wantErr: calendar.ErrEmptyTask},
		{name: "blank text", nt: calendar.NewTask{Task: " \t ", Date: "2024-02-10"}, wantErr: calendar.ErrEmptyTask},
		{name: "invalid date", nt: calendar.NewTask{Task: "ok", Date: "2024-02-30"}, wantErr: calendar.ErrInvalidDate},
		{name: "missing date", nt: calendar.NewTask{Task: "ok"}, wantErr: calendar.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, owner, tt.nt)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, core.IsValidationError(err))
		})
	}

	// nothing persisted
	first, last, _ := calendar.MonthRange(2024, 1)
	tasks, err := repo.QueryTasks(ctx, calendar.Filter{OwnerID: owner, From: first, To: last})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestService_SetTaskCompletion(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	owner, other := uuid.New().String(), uuid.New().String()

	task, err := svc.CreateTask(ctx, owner, calendar.NewTask{Task: "essay", Date: "2024-02-10"})
	require.NoError(t, err)

	t.Run("other owner", func(t *testing.T) {
		_, err := svc.SetTaskCompletion(ctx, other, task.ID, true)
		assert.Equal(t, calendar.ErrTaskNotFound, err)
	})
	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.SetTaskCompletion(ctx, owner, uuid.New().String(), true)
		assert.Equal(t, calendar.ErrTaskNotFound, err)
	})
	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.SetTaskCompletion(ctx, owner, "lol", true)
		assert.Equal(t, calendar.ErrTaskNotFound, err)
	})
	t.Run("complete", func(t *testing.T) {
		got, err := svc.SetTaskCompletion(ctx, owner, task.ID, true)
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, task.CreatedAt, got.CreatedAt)
	})
	t.Run("reopen", func(t *testing.T) {
		got, err := svc.SetTaskCompletion(ctx, owner, task.ID, false)
		require.NoError(t, err)
		assert.False(t, got.Completed)
	})

	// other owner's attempt did not touch the task
	tasks, err := svc.ListTasksForDate(ctx, owner, "2024-02-10")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Completed)
}

func TestService_DeleteTask(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	owner, other := uuid.New().String(), uuid.New().String()

	task, err := svc.CreateTask(ctx, owner, calendar.NewTask{Task: "lab report", Date: "2024-02-10"})
	require.NoError(t, err)

	assert.Equal(t, calendar.ErrTaskNotFound, svc.DeleteTask(ctx, other, task.ID))
	assert.Equal(t, calendar.ErrTaskNotFound, svc.DeleteTask(ctx, owner, "nope"))
	assert.NoError(t, svc.DeleteTask(ctx, owner, task.ID))
	assert.Equal(t, calendar.ErrTaskNotFound, svc.DeleteTask(ctx, owner, task.ID))

	tasks, err := svc.ListTasksForDate(ctx, owner, "2024-02-10")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestService_GetJournal_default(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	owner := uuid.New().String()

	entry, err := svc.GetJournal(ctx, owner, "2024-02-10")
	require.NoError(t, err)
	assert.False(t, entry.IsStored())
	assert.Equal(t, calendar.FeelingGood, entry.Feeling)
	assert.Equal(t, 5, entry.Productivity)
	assert.Equal(t, float64(0), entry.StudyHours)
	assert.Equal(t, "", entry.Content)

	// reading did not create a record
	_, err = repo.GetJournal(ctx, owner, calendar.NewDate(2024, time.February, 10))
	assert.Equal(t, calendar.ErrJournalNotFound, err)

	_, err = svc.GetJournal(ctx, owner, "")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestService_SaveJournal(t *testing.T) {
	tick(t)
	svc, _ := setup(t)
	ctx := context.Background()
	owner, other := uuid.New().String(), uuid.New().String()

	input := calendar.SaveJournal{
		Date:         "2024-02-10",
		Feeling:      "Okay",
		Productivity: float64(7),
		StudyHours:   "2.5",
		Content:      "  finished chapter 4  ",
	}

	first, err := svc.SaveJournal(ctx, owner, input)
	require.NoError(t, err)
	assert.True(t, first.IsStored())
	assert.Equal(t, calendar.FeelingOkay, first.Feeling)
	assert.Equal(t, 7, first.Productivity)
	assert.Equal(t, 2.5, first.StudyHours)
	assert.Equal(t, "finished chapter 4", first.Content)

	// same input: same record, same fields, fresh updatedAt
	second, err := svc.SaveJournal(ctx, owner, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	second.UpdatedAt = first.UpdatedAt
	assert.Equal(t, first, second)

	// replace in place
	input.Feeling = "Bad"
	input.Productivity = "2"
	third, err := svc.SaveJournal(ctx, owner, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, calendar.FeelingBad, third.Feeling)
	assert.Equal(t, 2, third.Productivity)

	got, err := svc.GetJournal(ctx, owner, "Sat Feb 10 2024")
	require.NoError(t, err)
	assert.Equal(t, third, got)

	// other owners still see the default
	otherEntry, err := svc.GetJournal(ctx, other, "2024-02-10")
	require.NoError(t, err)
	assert.False(t, otherEntry.IsStored())
}

func TestService_SaveJournal_invalid(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	owner := uuid.New().String()

	valid := func() calendar.SaveJournal {
		return calendar.SaveJournal{Date: "2024-02-10", Feeling: "Good", Productivity: float64(5), StudyHours: float64(1)}
	}
	tests := []struct {
		name    string
		mutate  func(*calendar.SaveJournal)
		wantErr error
	}{
		{name: "date", mutate: func(sj *calendar.SaveJournal) { sj.Date = "yesterday" }, wantErr: calendar.ErrInvalidDate},
		{name: "feeling", mutate: func(sj *calendar.SaveJournal) { sj.Feeling = "Meh" }, wantErr: calendar.ErrInvalidFeeling},
		{name: "productivity 0", mutate: func(sj *calendar.SaveJournal) { sj.Productivity = float64(0) }, wantErr: calendar.ErrProductivityRange},
		{name: "productivity 11", mutate: func(sj *calendar.SaveJournal) { sj.Productivity = float64(11) }, wantErr: calendar.ErrProductivityRange},
		{name: "productivity missing", mutate: func(sj *calendar.SaveJournal) { sj.Productivity = nil }, wantErr: calendar.ErrProductivityRange},
		{name: "hours negative", mutate: func(sj *calendar.SaveJournal) { sj.StudyHours = float64(-2) }, wantErr: calendar.ErrStudyHoursRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sj := valid()
			tt.mutate(&sj)
			_, err := svc.SaveJournal(ctx, owner, sj)
			assert.ErrorIs(t, err, tt.wantErr)

			entry, err := svc.GetJournal(ctx, owner, "2024-02-10")
			require.NoError(t, err)
			assert.False(t, entry.IsStored(), "invalid save must not write")
		})
	}
}

func TestService_GetMonth(t *testing.T) {
	tick(t)
	svc, _ := setup(t)
	ctx := context.Background()
	owner, other := uuid.New().String(), uuid.New().String()

	mustTask := func(owner, text, date string) calendar.Task {
		task, err := svc.CreateTask(ctx, owner, calendar.NewTask{Task: text, Date: date})
		require.NoError(t, err)
		return task
	}
	mustJournal := func(owner, date string) calendar.JournalEntry {
		entry, err := svc.SaveJournal(ctx, owner, calendar.SaveJournal{
			Date: date, Feeling: "Good", Productivity: float64(6), StudyHours: float64(3),
		})
		require.NoError(t, err)
		return entry
	}

	_ = mustTask(owner, "january", "2024-01-31")
	feb1a := mustTask(owner, "feb 1 a", "2024-02-01")
	feb1b := mustTask(owner, "feb 1 b", "2024-02-01")
	feb29 := mustTask(owner, "leap day", "2024-02-29")
	_ = mustTask(owner, "march", "2024-03-01")
	_ = mustTask(other, "other owner", "2024-02-15")
	_ = mustJournal(owner, "2024-01-31")
	jFeb29 := mustJournal(owner, "2024-02-29")
	_ = mustJournal(owner, "2024-03-01")
	_ = mustJournal(other, "2024-02-15")

	view, err := svc.GetMonth(ctx, owner, 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string][]calendar.Task{
		"2024-02-01": {feb1a, feb1b},
		"2024-02-29": {feb29},
	}, view.Tasks)
	assert.Equal(t, map[string]calendar.JournalEntry{"2024-02-29": jFeb29}, view.Journals)

	empty, err := svc.GetMonth(ctx, owner, 2023, 1)
	require.NoError(t, err)
	assert.Empty(t, empty.Tasks)
	assert.Empty(t, empty.Journals)

	for _, month := range []int{-1, 12} {
		_, err = svc.GetMonth(ctx, owner, 2024, month)
		assert.ErrorIs(t, err, calendar.ErrInvalidRange)
	}
}

// keyMangler corrupts the journal upsert key, as a broken store would.
type keyMangler struct {
	calendar.Repository
}

func (r keyMangler) UpsertJournal(ctx context.Context, entry calendar.JournalEntry) (calendar.JournalEntry, error) {
	entry.OwnerID = uuid.New().String()
	return entry, nil
}

func TestService_SaveJournal_integrity(t *testing.T) {
	_, repo := setup(t)
	svc := calendar.NewService(keyMangler{repo})

	_, err := svc.SaveJournal(context.Background(), uuid.New().String(), calendar.SaveJournal{
		Date: "2024-02-29", Feeling: "Good", Productivity: 5, StudyHours: 1,
	})
	assert.True(t, core.IsShutdown(err))
}
