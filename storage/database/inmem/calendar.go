package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/semsync/semsync/core/calendar"
)

type calendarRepository struct {
	tasks    *taskTable
	journals *journalTable
}

var _ calendar.Repository = (*calendarRepository)(nil) // interface compliance check

func NewCalendarRepository(db *DB) calendar.Repository {
	return &calendarRepository{tasks: db.task, journals: db.journal}
}

func (repo *calendarRepository) QueryTasks(_ context.Context, filter calendar.Filter) ([]calendar.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	tasks := make([]calendar.Task, 0)
	for _, t := range repo.tasks.table {
		if filter.Match(t.OwnerID, t.Date) {
			tasks = append(tasks, *t)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (repo *calendarRepository) CreateTask(_ context.Context, task calendar.Task) (calendar.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	task.ID = uuid.New().String()
	repo.tasks.table[ownedKey{ownerID: task.OwnerID, id: task.ID}] = &task
	return task, nil
}

func (repo *calendarRepository) UpdateTaskCompletion(_ context.Context, ownerID, id string, completed bool) (calendar.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	t, ok := repo.tasks.table[ownedKey{ownerID: ownerID, id: id}]
	if !ok {
		return calendar.Task{}, calendar.ErrTaskNotFound
	}
	t.Completed = completed
	return *t, nil
}

func (repo *calendarRepository) DeleteTask(_ context.Context, ownerID, id string) error {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	key := ownedKey{ownerID: ownerID, id: id}
	if _, ok := repo.tasks.table[key]; !ok {
		return calendar.ErrTaskNotFound
	}
	delete(repo.tasks.table, key)
	return nil
}

func (repo *calendarRepository) GetJournal(_ context.Context, ownerID string, date calendar.Date) (calendar.JournalEntry, error) {
	repo.journals.RLock()
	defer repo.journals.RUnlock()

	if j, ok := repo.journals.table[journalKey{ownerID: ownerID, date: date.String()}]; ok {
		return *j, nil
	}
	return calendar.JournalEntry{}, calendar.ErrJournalNotFound
}

func (repo *calendarRepository) UpsertJournal(_ context.Context, entry calendar.JournalEntry) (calendar.JournalEntry, error) {
	repo.journals.Lock()
	defer repo.journals.Unlock()

	key := journalKey{ownerID: entry.OwnerID, date: entry.Date.String()}
	if existing, ok := repo.journals.table[key]; ok {
		entry.ID = existing.ID
	} else {
		entry.ID = uuid.New().String()
	}
	repo.journals.table[key] = &entry
	return entry, nil
}

func (repo *calendarRepository) QueryJournals(_ context.Context, filter calendar.Filter) ([]calendar.JournalEntry, error) {
	repo.journals.RLock()
	defer repo.journals.RUnlock()

	journals := make([]calendar.JournalEntry, 0)
	for _, j := range repo.journals.table {
		if filter.Match(j.OwnerID, j.Date) {
			journals = append(journals, *j)
		}
	}
	sort.Slice(journals, func(i, j int) bool { return journals[i].Date.Before(journals[j].Date) })
	return journals, nil
}
