package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/semsync/semsync/core/study"
)

type studyRepository struct {
	subjects *subjectTable
	quizzes  *quizTable
}

var _ study.Repository = (*studyRepository)(nil)

func NewStudyRepository(db *DB) study.Repository {
	return &studyRepository{subjects: db.subject, quizzes: db.quiz}
}

func (repo *studyRepository) QuerySubjects(_ context.Context, ownerID string) ([]study.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	subjects := make([]study.Subject, 0)
	for key, s := range repo.subjects.table {
		if key.ownerID == ownerID {
			subjects = append(subjects, *s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].CreatedAt.Equal(subjects[j].CreatedAt) {
			return subjects[i].ID < subjects[j].ID
		}
		return subjects[i].CreatedAt.Before(subjects[j].CreatedAt)
	})
	return subjects, nil
}

func (repo *studyRepository) CreateSubject(_ context.Context, subject study.Subject) (study.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	subject.ID = uuid.New().String()
	repo.subjects.table[ownedKey{ownerID: subject.OwnerID, id: subject.ID}] = &subject
	return subject, nil
}

func (repo *studyRepository) GetSubject(_ context.Context, ownerID, id string) (study.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	if s, ok := repo.subjects.table[ownedKey{ownerID: ownerID, id: id}]; ok {
		return *s, nil
	}
	return study.Subject{}, study.ErrSubjectNotFound
}

func (repo *studyRepository) UpdateSubject(_ context.Context, subject study.Subject) (study.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	s, ok := repo.subjects.table[ownedKey{ownerID: subject.OwnerID, id: subject.ID}]
	if !ok {
		return study.Subject{}, study.ErrSubjectNotFound
	}
	s.Name = subject.Name
	s.Credits = subject.Credits
	s.TargetGrade = subject.TargetGrade
	s.Progress = subject.Progress
	return *s, nil
}

func (repo *studyRepository) DeleteSubject(_ context.Context, ownerID, id string) error {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	key := ownedKey{ownerID: ownerID, id: id}
	if _, ok := repo.subjects.table[key]; !ok {
		return study.ErrSubjectNotFound
	}
	delete(repo.subjects.table, key)
	return nil
}

func (repo *studyRepository) QueryQuizzes(_ context.Context, ownerID string) ([]study.QuizResult, error) {
	repo.quizzes.RLock()
	defer repo.quizzes.RUnlock()

	quizzes := make([]study.QuizResult, 0)
	for key, q := range repo.quizzes.table {
		if key.ownerID == ownerID {
			quizzes = append(quizzes, *q)
		}
	}
	sort.Slice(quizzes, func(i, j int) bool {
		if quizzes[i].TakenAt.Equal(quizzes[j].TakenAt) {
			return quizzes[i].ID < quizzes[j].ID
		}
		return quizzes[i].TakenAt.Before(quizzes[j].TakenAt)
	})
	return quizzes, nil
}

func (repo *studyRepository) CreateQuiz(_ context.Context, quiz study.QuizResult) (study.QuizResult, error) {
	repo.quizzes.Lock()
	defer repo.quizzes.Unlock()

	quiz.ID = uuid.New().String()
	repo.quizzes.table[ownedKey{ownerID: quiz.OwnerID, id: quiz.ID}] = &quiz
	return quiz, nil
}
