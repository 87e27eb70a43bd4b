package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core/study"
)

const (
	subjectColumns = "id, owner_id, name, credits, target_grade, progress, created_at"
	quizColumns    = "id, owner_id, quiz_name, topic, score, taken_at"

	querySubjects = `SELECT ` + subjectColumns + ` FROM subjects WHERE owner_id = $1 ORDER BY created_at, id`

	insertSubject = `INSERT INTO subjects (` + subjectColumns + `)
		VALUES (:id, :owner_id, :name, :credits, :target_grade, :progress, :created_at)
		RETURNING ` + subjectColumns

	getSubject = `SELECT ` + subjectColumns + ` FROM subjects WHERE owner_id = $1 AND id = $2`

	updateSubject = `UPDATE subjects SET
			name = :name,
			credits = :credits,
			target_grade = :target_grade,
			progress = :progress
		WHERE owner_id = :owner_id AND id = :id
		RETURNING ` + subjectColumns

	deleteSubject = `DELETE FROM subjects WHERE owner_id = $1 AND id = $2`

	queryQuizzes = `SELECT ` + quizColumns + ` FROM quiz_results WHERE owner_id = $1 ORDER BY taken_at, id`

	insertQuiz = `INSERT INTO quiz_results (` + quizColumns + `)
		VALUES (:id, :owner_id, :quiz_name, :topic, :score, :taken_at)
		RETURNING ` + quizColumns
)

type (
	subjectRow struct {
		ID          string    `db:"id"`
		OwnerID     string    `db:"owner_id"`
		Name        string    `db:"name"`
		Credits     int       `db:"credits"`
		TargetGrade string    `db:"target_grade"`
		Progress    int       `db:"progress"`
		CreatedAt   time.Time `db:"created_at"`
	}

	quizRow struct {
		ID       string    `db:"id"`
		OwnerID  string    `db:"owner_id"`
		QuizName string    `db:"quiz_name"`
		Topic    string    `db:"topic"`
		Score    float64   `db:"score"`
		TakenAt  time.Time `db:"taken_at"`
	}
)

func newSubjectRow(s study.Subject) subjectRow {
	return subjectRow{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Name:        s.Name,
		Credits:     s.Credits,
		TargetGrade: s.TargetGrade,
		Progress:    s.Progress,
		CreatedAt:   s.CreatedAt,
	}
}

func (r subjectRow) toSubject() study.Subject {
	return study.Subject{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Credits:     r.Credits,
		TargetGrade: r.TargetGrade,
		Progress:    r.Progress,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func (r quizRow) toQuiz() study.QuizResult {
	return study.QuizResult{
		ID:       r.ID,
		OwnerID:  r.OwnerID,
		QuizName: r.QuizName,
		Topic:    r.Topic,
		Score:    r.Score,
		TakenAt:  r.TakenAt.UTC(),
	}
}

type studyRepository struct {
	db *sqlx.DB
}

var _ study.Repository = (*studyRepository)(nil)

func NewStudyRepository(db *sqlx.DB) study.Repository {
	return &studyRepository{db: db}
}

func (repo *studyRepository) QuerySubjects(ctx context.Context, ownerID string) ([]study.Subject, error) {
	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, querySubjects, ownerID); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	subjects := make([]study.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.toSubject())
	}
	return subjects, nil
}

func (repo *studyRepository) CreateSubject(ctx context.Context, subject study.Subject) (study.Subject, error) {
	row := newSubjectRow(subject)
	row.ID = uuid.New().String()
	if err := namedGet(ctx, repo.db, &row, insertSubject, row); err != nil {
		return study.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return row.toSubject(), nil
}

func (repo *studyRepository) GetSubject(ctx context.Context, ownerID, id string) (study.Subject, error) {
	if !validID(id) {
		return study.Subject{}, study.ErrSubjectNotFound
	}
	var row subjectRow
	if err := repo.db.GetContext(ctx, &row, getSubject, ownerID, id); err != nil {
		if err == sql.ErrNoRows {
			return study.Subject{}, study.ErrSubjectNotFound
		}
		return study.Subject{}, errors.Wrap(err, "selecting subject")
	}
	return row.toSubject(), nil
}

func (repo *studyRepository) UpdateSubject(ctx context.Context, subject study.Subject) (study.Subject, error) {
	if !validID(subject.ID) {
		return study.Subject{}, study.ErrSubjectNotFound
	}
	row := newSubjectRow(subject)
	if err := namedGet(ctx, repo.db, &row, updateSubject, row); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return study.Subject{}, study.ErrSubjectNotFound
		}
		return study.Subject{}, errors.Wrap(err, "updating subject")
	}
	return row.toSubject(), nil
}

func (repo *studyRepository) DeleteSubject(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return study.ErrSubjectNotFound
	}
	return execOne(ctx, repo.db, study.ErrSubjectNotFound, deleteSubject, ownerID, id)
}

func (repo *studyRepository) QueryQuizzes(ctx context.Context, ownerID string) ([]study.QuizResult, error) {
	var rows []quizRow
	if err := repo.db.SelectContext(ctx, &rows, queryQuizzes, ownerID); err != nil {
		return nil, errors.Wrap(err, "selecting quiz results")
	}
	quizzes := make([]study.QuizResult, 0, len(rows))
	for _, r := range rows {
		quizzes = append(quizzes, r.toQuiz())
	}
	return quizzes, nil
}

func (repo *studyRepository) CreateQuiz(ctx context.Context, quiz study.QuizResult) (study.QuizResult, error) {
	row := quizRow{
		ID:       uuid.New().String(),
		OwnerID:  quiz.OwnerID,
		QuizName: quiz.QuizName,
		Topic:    quiz.Topic,
		Score:    quiz.Score,
		TakenAt:  quiz.TakenAt,
	}
	if err := namedGet(ctx, repo.db, &row, insertQuiz, row); err != nil {
		return study.QuizResult{}, errors.Wrap(err, "inserting quiz result")
	}
	return row.toQuiz(), nil
}
