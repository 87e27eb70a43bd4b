package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrJournalNotFound = errors.New("journal not found")
)

// Repository persists tasks & journal entries.
// Every lookup is scoped by owner in the query itself.
type Repository interface {
	// QueryTasks returns the tasks matching filter, ordered by CreatedAt ascending.
	QueryTasks(ctx context.Context, filter Filter) ([]Task, error)
	// CreateTask generates the task ID.
	CreateTask(ctx context.Context, task Task) (Task, error)
	// UpdateTaskCompletion returns ErrTaskNotFound when (ownerID, id) matches no task.
	UpdateTaskCompletion(ctx context.Context, ownerID, id string, completed bool) (Task, error)
	// DeleteTask returns ErrTaskNotFound when (ownerID, id) matches no task.
	DeleteTask(ctx context.Context, ownerID, id string) error

	// GetJournal returns ErrJournalNotFound when nothing is stored for (ownerID, date).
	GetJournal(ctx context.Context, ownerID string, date Date) (JournalEntry, error)
	// UpsertJournal creates or replaces the entry keyed by (OwnerID, Date) in a single atomic operation
	// and returns the stored state.
	UpsertJournal(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	QueryJournals(ctx context.Context, filter Filter) ([]JournalEntry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Tasks

func (svc *Service) ListTasksForDate(ctx context.Context, ownerID, date string) ([]Task, error) {
	day, err := NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	tasks, err := svc.repo.QueryTasks(ctx, DayFilter(ownerID, day))
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

func (svc *Service) CreateTask(ctx context.Context, ownerID string, nt NewTask) (Task, error) {
	text, err := ValidateTaskText(nt.Task)
	if err != nil {
		return Task{}, err
	}
	day, err := NormalizeDate(nt.Date)
	if err != nil {
		return Task{}, err
	}

	task, err := svc.repo.CreateTask(ctx, Task{
		OwnerID:   ownerID,
		Text:      text,
		Date:      day,
		Completed: false,
		CreatedAt: NowFunc().UTC(),
	})
	if err != nil {
		return Task{}, errors.Wrap(err, "creating task")
	}
	return task, nil
}

func (svc *Service) SetTaskCompletion(ctx context.Context, ownerID, id string, completed bool) (Task, error) {
	if !validID(id) {
		return Task{}, ErrTaskNotFound
	}
	task, err := svc.repo.UpdateTaskCompletion(ctx, ownerID, id, completed)
	if err != nil {
		if errors.Cause(err) == ErrTaskNotFound {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, errors.Wrap(err, "updating task completion")
	}
	return task, nil
}

func (svc *Service) DeleteTask(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return ErrTaskNotFound
	}
	if err := svc.repo.DeleteTask(ctx, ownerID, id); err != nil {
		if errors.Cause(err) == ErrTaskNotFound {
			return ErrTaskNotFound
		}
		return errors.Wrap(err, "deleting task")
	}
	return nil
}

// Journal

// GetJournal returns the stored entry for the day, or DefaultJournal when there is none.
// Nothing is written in the latter case.
func (svc *Service) GetJournal(ctx context.Context, ownerID, date string) (JournalEntry, error) {
	day, err := NormalizeDate(date)
	if err != nil {
		return JournalEntry{}, err
	}
	entry, err := svc.repo.GetJournal(ctx, ownerID, day)
	if err != nil {
		if errors.Cause(err) == ErrJournalNotFound {
			return DefaultJournal(ownerID, day), nil
		}
		return JournalEntry{}, errors.Wrap(err, "getting journal")
	}
	return entry, nil
}

// SaveJournal validates every field, then creates or replaces the day's entry.
func (svc *Service) SaveJournal(ctx context.Context, ownerID string, sj SaveJournal) (JournalEntry, error) {
	day, err := NormalizeDate(sj.Date)
	if err != nil {
		return JournalEntry{}, err
	}
	feeling, err := ValidateFeeling(sj.Feeling)
	if err != nil {
		return JournalEntry{}, err
	}
	productivity, err := ValidateProductivity(sj.Productivity)
	if err != nil {
		return JournalEntry{}, err
	}
	hours, err := ValidateStudyHours(sj.StudyHours)
	if err != nil {
		return JournalEntry{}, err
	}

	entry, err := svc.repo.UpsertJournal(ctx, JournalEntry{
		OwnerID:      ownerID,
		Date:         day,
		Feeling:      feeling,
		Productivity: productivity,
		StudyHours:   hours,
		Content:      core.CleanString(sj.Content),
		UpdatedAt:    NowFunc().UTC(),
	})
	if err != nil {
		return JournalEntry{}, errors.Wrap(err, "upserting journal")
	}
	// the upsert key must come back untouched, anything else means the store is corrupt
	if entry.OwnerID != ownerID || !entry.Date.Equal(day) {
		return JournalEntry{}, core.NewShutdownError("journal upsert returned an entry for another key")
	}
	return entry, nil
}

// Month

// GetMonth returns the owner's tasks & journals of a month grouped by date. month is zero-based.
func (svc *Service) GetMonth(ctx context.Context, ownerID string, year, month int) (MonthView, error) {
	first, last, err := MonthRange(year, month)
	if err != nil {
		return MonthView{}, err
	}
	filter := Filter{OwnerID: ownerID, From: first, To: last}

	tasks, err := svc.repo.QueryTasks(ctx, filter)
	if err != nil {
		return MonthView{}, errors.Wrap(err, "querying month tasks")
	}
	journals, err := svc.repo.QueryJournals(ctx, filter)
	if err != nil {
		return MonthView{}, errors.Wrap(err, "querying month journals")
	}
	return GroupByDate(tasks, journals), nil
}

// GroupByDate groups tasks & journals by their canonical date. Task order is kept within a date.
func GroupByDate(tasks []Task, journals []JournalEntry) MonthView {
	view := MonthView{
		Tasks:    make(map[string][]Task),
		Journals: make(map[string]JournalEntry, len(journals)),
	}
	for _, t := range tasks {
		key := t.Date.String()
		view.Tasks[key] = append(view.Tasks[key], t)
	}
	for _, j := range journals {
		view.Journals[j.Date.String()] = j
	}
	return view
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
