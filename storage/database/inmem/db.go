package inmemdb

import (
	"context"
	"sync"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/calendar"
	"github.com/semsync/semsync/core/study"
	"github.com/semsync/semsync/core/user"
)

type (
	// DB is a process-local store. Each table has its own lock; every write is a single locked section.
	DB struct {
		user    *userTable
		task    *taskTable
		journal *journalTable
		subject *subjectTable
		quiz    *quizTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	// tasks & subjects are keyed by (owner, id) so lookups are always owner-scoped
	ownedKey struct {
		ownerID string
		id      string
	}

	taskTable struct {
		sync.RWMutex
		table map[ownedKey]*calendar.Task
	}

	// journals are keyed by their uniqueness constraint
	journalKey struct {
		ownerID string
		date    string
	}

	journalTable struct {
		sync.RWMutex
		table map[journalKey]*calendar.JournalEntry
	}

	subjectTable struct {
		sync.RWMutex
		table map[ownedKey]*study.Subject
	}

	quizTable struct {
		sync.RWMutex
		table map[ownedKey]*study.QuizResult
	}
)

var _ core.Store = (*DB)(nil)

func Open() *DB {
	return &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		task:    &taskTable{table: make(map[ownedKey]*calendar.Task)},
		journal: &journalTable{table: make(map[journalKey]*calendar.JournalEntry)},
		subject: &subjectTable{table: make(map[ownedKey]*study.Subject)},
		quiz:    &quizTable{table: make(map[ownedKey]*study.QuizResult)},
	}
}

func (db *DB) Ping(context.Context) error { return nil }
func (db *DB) Close(context.Context) error { return nil }

// Reset empties every table.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.task.Lock()
	db.task.table = make(map[ownedKey]*calendar.Task)
	db.task.Unlock()

	db.journal.Lock()
	db.journal.table = make(map[journalKey]*calendar.JournalEntry)
	db.journal.Unlock()

	db.subject.Lock()
	db.subject.table = make(map[ownedKey]*study.Subject)
	db.subject.Unlock()

	db.quiz.Lock()
	db.quiz.table = make(map[ownedKey]*study.QuizResult)
	db.quiz.Unlock()
}
