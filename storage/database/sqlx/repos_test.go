package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semsync/semsync/core/calendar"
	"github.com/semsync/semsync/core/study"
	"github.com/semsync/semsync/core/user"
	"github.com/semsync/semsync/storage/database"
	sqlxrepos "github.com/semsync/semsync/storage/database/sqlx"
	testutil "github.com/semsync/semsync/tests"
)

func prepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenURL(testutil.DatabaseURL(t))
	require.NoError(t, err)
	testutil.Cleanup(t, database.NewStore(db))

	require.NoError(t, database.Migrate(db.DB))
	_, err = db.Exec("TRUNCATE users CASCADE")
	require.NoError(t, err)
	return db
}

func TestCalendarRepository(t *testing.T) {
	db := prepareDB(t)
	ctx := context.Background()
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewCalendarRepository(db)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner1", "", "", true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other1", "", "", true)
	base := time.Now().UTC()

	_ = testutil.CreateTask(t, repo, owner.ID, "jan", "2024-01-31", base)
	feb1b := testutil.CreateTask(t, repo, owner.ID, "feb 1 b", "2024-02-01", base.Add(2*time.Second))
	feb1a := testutil.CreateTask(t, repo, owner.ID, "feb 1 a", "2024-02-01", base.Add(time.Second))
	feb29 := testutil.CreateTask(t, repo, owner.ID, "leap", "2024-02-29", base)
	_ = testutil.CreateTask(t, repo, owner.ID, "mar", "2024-03-01", base)
	_ = testutil.CreateTask(t, repo, other.ID, "other", "2024-02-10", base)

	first, last, err := calendar.MonthRange(2024, 1)
	require.NoError(t, err)
	tasks, err := repo.QueryTasks(ctx, calendar.Filter{OwnerID: owner.ID, From: first, To: last})
	require.NoError(t, err)
	assert.Equal(t, []calendar.Task{feb29, feb1a, feb1b}, tasks)

	t.Run("completion is owner scoped", func(t *testing.T) {
		_, err := repo.UpdateTaskCompletion(ctx, other.ID, feb29.ID, true)
		assert.Equal(t, calendar.ErrTaskNotFound, err)

		got, err := repo.UpdateTaskCompletion(ctx, owner.ID, feb29.ID, true)
		require.NoError(t, err)
		assert.True(t, got.Completed)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, calendar.ErrTaskNotFound, repo.DeleteTask(ctx, other.ID, feb1a.ID))
		assert.NoError(t, repo.DeleteTask(ctx, owner.ID, feb1a.ID))
		assert.Equal(t, calendar.ErrTaskNotFound, repo.DeleteTask(ctx, owner.ID, feb1a.ID))
	})

	t.Run("journal upsert", func(t *testing.T) {
		day := calendar.NewDate(2024, time.February, 29)
		_, err := repo.GetJournal(ctx, owner.ID, day)
		assert.Equal(t, calendar.ErrJournalNotFound, err)

		entry := calendar.JournalEntry{
			OwnerID: owner.ID, Date: day, Feeling: calendar.FeelingOkay,
			Productivity: 6, StudyHours: 2.5, Content: "ok", UpdatedAt: base,
		}
		saved, err := repo.UpsertJournal(ctx, entry)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)

		entry.Feeling = calendar.FeelingBad
		entry.UpdatedAt = base.Add(time.Minute)
		again, err := repo.UpsertJournal(ctx, entry)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, again.ID)
		assert.Equal(t, calendar.FeelingBad, again.Feeling)

		got, err := repo.GetJournal(ctx, owner.ID, day)
		require.NoError(t, err)
		assert.Equal(t, again, got)

		_ = testutil.SaveJournal(t, repo, owner.ID, "2024-03-01", calendar.FeelingGood, 5)
		journals, err := repo.QueryJournals(ctx, calendar.Filter{OwnerID: owner.ID, From: first, To: last})
		require.NoError(t, err)
		assert.Equal(t, []calendar.JournalEntry{got}, journals)
	})
}

func TestStudyRepository(t *testing.T) {
	db := prepareDB(t)
	ctx := context.Background()
	repo := sqlxrepos.NewStudyRepository(db)
	owner := testutil.CreateUser(t, sqlxrepos.NewUserRepository(db), "Owner", "owner1", "", "", true)

	algebra := testutil.CreateSubject(t, repo, owner.ID, "Algebra", 4, "A")
	time.Sleep(2 * time.Millisecond)
	physics := testutil.CreateSubject(t, repo, owner.ID, "Physics", 3, "")

	subjects, err := repo.QuerySubjects(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []study.Subject{algebra, physics}, subjects)

	physics.Progress = 60
	physics.TargetGrade = "B+"
	updated, err := repo.UpdateSubject(ctx, physics)
	require.NoError(t, err)
	assert.Equal(t, physics, updated)

	stranger := physics
	stranger.OwnerID = uuid.New().String()
	_, err = repo.UpdateSubject(ctx, stranger)
	assert.Equal(t, study.ErrSubjectNotFound, err)
	_, err = repo.GetSubject(ctx, owner.ID, "lol")
	assert.Equal(t, study.ErrSubjectNotFound, err)

	require.NoError(t, repo.DeleteSubject(ctx, owner.ID, algebra.ID))
	assert.Equal(t, study.ErrSubjectNotFound, repo.DeleteSubject(ctx, owner.ID, algebra.ID))

	later := testutil.RecordQuiz(t, repo, owner.ID, "Quiz 2", 91, time.Now())
	earlier := testutil.RecordQuiz(t, repo, owner.ID, "Quiz 1", 64.5, time.Now().Add(-time.Hour))
	quizzes, err := repo.QueryQuizzes(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []study.QuizResult{earlier, later}, quizzes)
}

func TestUserRepository(t *testing.T) {
	db := prepareDB(t)
	ctx := context.Background()
	repo := sqlxrepos.NewUserRepository(db)

	ada := testutil.CreateUser(t, repo, "Ada", "ada_lovelace", "ada@semsync.io", "Tr0ub4dor&3x", true)
	grace := testutil.CreateUser(t, repo, "Grace", "", "grace@semsync.io", "", true)
	assert.True(t, ada.LastLogin.IsZero())

	assert.Equal(t, user.ErrUsernameExists, repo.CheckUsernameUniqueness(ctx, "ada_lovelace", ""))
	assert.Equal(t, user.ErrEmailExists, repo.CheckUsernameUniqueness(ctx, "someone", "grace@semsync.io"))
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "ada_lovelace", "ada@semsync.io", ada))
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "", ""))

	for _, uname := range []string{"ada_lovelace", "ada@semsync.io"} {
		got, err := repo.GetUserByUsernameOrEmail(ctx, uname)
		require.NoError(t, err)
		assert.Equal(t, ada.ID, got.ID)
		assert.NoError(t, got.CheckPassword("Tr0ub4dor&3x"))
	}
	_, err := repo.GetUserByUsernameOrEmail(ctx, "")
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.GetUserByID(ctx, "lol")
	assert.Equal(t, user.ErrNotFound, err)

	grace.LastLogin = time.Now().UTC().Truncate(time.Millisecond)
	grace.IsActive = false
	updated, err := repo.UpdateUser(ctx, grace)
	require.NoError(t, err)
	assert.Equal(t, grace, updated)

	got, err := repo.GetUserByID(ctx, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, grace, got)

	_, err = repo.UpdateUser(ctx, user.User{ID: uuid.New().String()})
	assert.Equal(t, user.ErrNotFound, err)
}
