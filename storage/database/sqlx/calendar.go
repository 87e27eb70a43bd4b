package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core/calendar"
)

const (
	taskColumns    = "id, owner_id, text, date, completed, created_at"
	journalColumns = "id, owner_id, date, feeling, productivity, study_hours, content, updated_at"

	queryTasks = `SELECT ` + taskColumns + ` FROM tasks
		WHERE owner_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY created_at, id`

	insertTask = `INSERT INTO tasks (` + taskColumns + `)
		VALUES (:id, :owner_id, :text, :date, :completed, :created_at)
		RETURNING ` + taskColumns

	updateTaskCompletion = `UPDATE tasks SET completed = $3
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + taskColumns

	deleteTask = `DELETE FROM tasks WHERE owner_id = $1 AND id = $2`

	getJournal = `SELECT ` + journalColumns + ` FROM journals WHERE owner_id = $1 AND date = $2`

	upsertJournal = `INSERT INTO journals (` + journalColumns + `)
		VALUES (:id, :owner_id, :date, :feeling, :productivity, :study_hours, :content, :updated_at)
		ON CONFLICT (owner_id, date) DO UPDATE SET
			feeling = EXCLUDED.feeling,
			productivity = EXCLUDED.productivity,
			study_hours = EXCLUDED.study_hours,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + journalColumns

	queryJournals = `SELECT ` + journalColumns + ` FROM journals
		WHERE owner_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`
)

type (
	taskRow struct {
		ID        string        `db:"id"`
		OwnerID   string        `db:"owner_id"`
		Text      string        `db:"text"`
		Date      calendar.Date `db:"date"`
		Completed bool          `db:"completed"`
		CreatedAt time.Time     `db:"created_at"`
	}

	journalRow struct {
		ID           string        `db:"id"`
		OwnerID      string        `db:"owner_id"`
		Date         calendar.Date `db:"date"`
		Feeling      string        `db:"feeling"`
		Productivity int           `db:"productivity"`
		StudyHours   float64       `db:"study_hours"`
		Content      string        `db:"content"`
		UpdatedAt    time.Time     `db:"updated_at"`
	}
)

func (r taskRow) toTask() calendar.Task {
	return calendar.Task{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Text:      r.Text,
		Date:      r.Date,
		Completed: r.Completed,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func (r journalRow) toJournal() calendar.JournalEntry {
	return calendar.JournalEntry{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Date:         r.Date,
		Feeling:      calendar.Feeling(r.Feeling),
		Productivity: r.Productivity,
		StudyHours:   r.StudyHours,
		Content:      r.Content,
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type calendarRepository struct {
	db *sqlx.DB
}

var _ calendar.Repository = (*calendarRepository)(nil)

func NewCalendarRepository(db *sqlx.DB) calendar.Repository {
	return &calendarRepository{db: db}
}

func (repo *calendarRepository) QueryTasks(ctx context.Context, filter calendar.Filter) ([]calendar.Task, error) {
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, queryTasks, filter.OwnerID, filter.From, filter.To); err != nil {
		return nil, errors.Wrap(err, "selecting tasks")
	}
	tasks := make([]calendar.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}

func (repo *calendarRepository) CreateTask(ctx context.Context, task calendar.Task) (calendar.Task, error) {
	row := taskRow{
		ID:        uuid.New().String(),
		OwnerID:   task.OwnerID,
		Text:      task.Text,
		Date:      task.Date,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt,
	}
	if err := namedGet(ctx, repo.db, &row, insertTask, row); err != nil {
		return calendar.Task{}, errors.Wrap(err, "inserting task")
	}
	return row.toTask(), nil
}

func (repo *calendarRepository) UpdateTaskCompletion(ctx context.Context, ownerID, id string, completed bool) (calendar.Task, error) {
	if !validID(id) {
		return calendar.Task{}, calendar.ErrTaskNotFound
	}
	var row taskRow
	if err := repo.db.GetContext(ctx, &row, updateTaskCompletion, ownerID, id, completed); err != nil {
		if err == sql.ErrNoRows {
			return calendar.Task{}, calendar.ErrTaskNotFound
		}
		return calendar.Task{}, errors.Wrap(err, "updating task")
	}
	return row.toTask(), nil
}

func (repo *calendarRepository) DeleteTask(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return calendar.ErrTaskNotFound
	}
	return execOne(ctx, repo.db, calendar.ErrTaskNotFound, deleteTask, ownerID, id)
}

func (repo *calendarRepository) GetJournal(ctx context.Context, ownerID string, date calendar.Date) (calendar.JournalEntry, error) {
	var row journalRow
	if err := repo.db.GetContext(ctx, &row, getJournal, ownerID, date); err != nil {
		if err == sql.ErrNoRows {
			return calendar.JournalEntry{}, calendar.ErrJournalNotFound
		}
		return calendar.JournalEntry{}, errors.Wrap(err, "selecting journal")
	}
	return row.toJournal(), nil
}

// UpsertJournal relies on the (owner_id, date) unique constraint: the generated id is only used on insert.
func (repo *calendarRepository) UpsertJournal(ctx context.Context, entry calendar.JournalEntry) (calendar.JournalEntry, error) {
	row := journalRow{
		ID:           uuid.New().String(),
		OwnerID:      entry.OwnerID,
		Date:         entry.Date,
		Feeling:      string(entry.Feeling),
		Productivity: entry.Productivity,
		StudyHours:   entry.StudyHours,
		Content:      entry.Content,
		UpdatedAt:    entry.UpdatedAt,
	}
	if err := namedGet(ctx, repo.db, &row, upsertJournal, row); err != nil {
		return calendar.JournalEntry{}, errors.Wrap(err, "upserting journal")
	}
	return row.toJournal(), nil
}

func (repo *calendarRepository) QueryJournals(ctx context.Context, filter calendar.Filter) ([]calendar.JournalEntry, error) {
	var rows []journalRow
	if err := repo.db.SelectContext(ctx, &rows, queryJournals, filter.OwnerID, filter.From, filter.To); err != nil {
		return nil, errors.Wrap(err, "selecting journals")
	}
	journals := make([]calendar.JournalEntry, 0, len(rows))
	for _, r := range rows {
		journals = append(journals, r.toJournal())
	}
	return journals, nil
}
