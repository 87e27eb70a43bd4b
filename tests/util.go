package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/calendar"
	"github.com/semsync/semsync/core/study"
	"github.com/semsync/semsync/core/user"
)

// storage tests only run when these are set
const (
	DatabaseURLEnv = "TEST_DATABASE_URL"
	MongoURIEnv    = "TEST_MONGO_URI"
)

// DatabaseURL returns the postgres URL storage tests run against, skipping the test when unset.
func DatabaseURL(t *testing.T) string {
	t.Helper()
	u := os.Getenv(DatabaseURLEnv)
	if u == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}
	return u
}

// MongoURI returns the mongo URI storage tests run against, skipping the test when unset.
func MongoURI(t *testing.T) string {
	t.Helper()
	u := os.Getenv(MongoURIEnv)
	if u == "" {
		t.Skipf("%s not set", MongoURIEnv)
	}
	return u
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTask(t *testing.T, repo calendar.Repository, ownerID, text, date string, createdAt time.Time) calendar.Task {
	t.Helper()
	day, err := calendar.NormalizeDate(date)
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	task, err := repo.CreateTask(context.Background(), calendar.Task{
		OwnerID:   ownerID,
		Text:      text,
		Date:      day,
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return task
}

func SaveJournal(t *testing.T, repo calendar.Repository, ownerID, date string, feeling calendar.Feeling, productivity int) calendar.JournalEntry {
	t.Helper()
	day, err := calendar.NormalizeDate(date)
	if err != nil {
		t.Fatalf("SaveJournal() failed: %v", err)
	}
	entry, err := repo.UpsertJournal(context.Background(), calendar.JournalEntry{
		OwnerID:      ownerID,
		Date:         day,
		Feeling:      feeling,
		Productivity: productivity,
		UpdatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		t.Fatalf("SaveJournal() failed: %v", err)
	}
	return entry
}

func CreateSubject(t *testing.T, repo study.Repository, ownerID, name string, credits int, grade string) study.Subject {
	t.Helper()
	subject, err := repo.CreateSubject(context.Background(), study.Subject{
		OwnerID:     ownerID,
		Name:        name,
		Credits:     credits,
		TargetGrade: grade,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subject
}

func RecordQuiz(t *testing.T, repo study.Repository, ownerID, name string, score float64, takenAt time.Time) study.QuizResult {
	t.Helper()
	quiz, err := repo.CreateQuiz(context.Background(), study.QuizResult{
		OwnerID:  ownerID,
		QuizName: name,
		Score:    score,
		TakenAt:  takenAt.UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		t.Fatalf("RecordQuiz() failed: %v", err)
	}
	return quiz
}

// Cleanup closes store when t finishes.
func Cleanup(t *testing.T, store core.Store) {
	t.Cleanup(func() {
		if err := store.Close(context.Background()); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
}
