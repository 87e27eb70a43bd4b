package mongorepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/semsync/semsync/core/study"
)

type (
	subjectDoc struct {
		ID          string    `bson:"_id"`
		OwnerID     string    `bson:"owner_id"`
		Name        string    `bson:"name"`
		Credits     int       `bson:"credits"`
		TargetGrade string    `bson:"target_grade"`
		Progress    int       `bson:"progress"`
		CreatedAt   time.Time `bson:"created_at"`
	}

	quizDoc struct {
		ID       string    `bson:"_id"`
		OwnerID  string    `bson:"owner_id"`
		QuizName string    `bson:"quiz_name"`
		Topic    string    `bson:"topic"`
		Score    float64   `bson:"score"`
		TakenAt  time.Time `bson:"taken_at"`
	}
)

func (doc subjectDoc) toSubject() study.Subject {
	return study.Subject{
		ID:          doc.ID,
		OwnerID:     doc.OwnerID,
		Name:        doc.Name,
		Credits:     doc.Credits,
		TargetGrade: doc.TargetGrade,
		Progress:    doc.Progress,
		CreatedAt:   doc.CreatedAt.UTC(),
	}
}

func (doc quizDoc) toQuiz() study.QuizResult {
	return study.QuizResult{
		ID:       doc.ID,
		OwnerID:  doc.OwnerID,
		QuizName: doc.QuizName,
		Topic:    doc.Topic,
		Score:    doc.Score,
		TakenAt:  doc.TakenAt.UTC(),
	}
}

type studyRepository struct {
	subjects *mongo.Collection
	quizzes  *mongo.Collection
}

var _ study.Repository = (*studyRepository)(nil)

func NewStudyRepository(store *Store) study.Repository {
	return &studyRepository{
		subjects: store.db.Collection(subjectsCollection),
		quizzes:  store.db.Collection(quizzesCollection),
	}
}

func (repo *studyRepository) QuerySubjects(ctx context.Context, ownerID string) ([]study.Subject, error) {
	cur, err := repo.subjects.Find(ctx, bson.M{"owner_id": ownerID}, ascending("created_at", "_id"))
	if err != nil {
		return nil, errors.Wrap(err, "finding subjects")
	}
	var docs []subjectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding subjects")
	}
	subjects := make([]study.Subject, 0, len(docs))
	for _, doc := range docs {
		subjects = append(subjects, doc.toSubject())
	}
	return subjects, nil
}

func (repo *studyRepository) CreateSubject(ctx context.Context, subject study.Subject) (study.Subject, error) {
	doc := subjectDoc{
		ID:          uuid.New().String(),
		OwnerID:     subject.OwnerID,
		Name:        subject.Name,
		Credits:     subject.Credits,
		TargetGrade: subject.TargetGrade,
		Progress:    subject.Progress,
		CreatedAt:   msUTC(subject.CreatedAt),
	}
	if _, err := repo.subjects.InsertOne(ctx, doc); err != nil {
		return study.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return doc.toSubject(), nil
}

func (repo *studyRepository) GetSubject(ctx context.Context, ownerID, id string) (study.Subject, error) {
	var doc subjectDoc
	if err := repo.subjects.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return study.Subject{}, study.ErrSubjectNotFound
		}
		return study.Subject{}, errors.Wrap(err, "finding subject")
	}
	return doc.toSubject(), nil
}

func (repo *studyRepository) UpdateSubject(ctx context.Context, subject study.Subject) (study.Subject, error) {
	var doc subjectDoc
	err := repo.subjects.FindOneAndUpdate(ctx,
		bson.M{"_id": subject.ID, "owner_id": subject.OwnerID},
		bson.M{"$set": bson.M{
			"name":         subject.Name,
			"credits":      subject.Credits,
			"target_grade": subject.TargetGrade,
			"progress":     subject.Progress,
		}},
		returnAfter(),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return study.Subject{}, study.ErrSubjectNotFound
		}
		return study.Subject{}, errors.Wrap(err, "updating subject")
	}
	return doc.toSubject(), nil
}

func (repo *studyRepository) DeleteSubject(ctx context.Context, ownerID, id string) error {
	res, err := repo.subjects.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if res.DeletedCount == 0 {
		return study.ErrSubjectNotFound
	}
	return nil
}

func (repo *studyRepository) QueryQuizzes(ctx context.Context, ownerID string) ([]study.QuizResult, error) {
	cur, err := repo.quizzes.Find(ctx, bson.M{"owner_id": ownerID}, ascending("taken_at", "_id"))
	if err != nil {
		return nil, errors.Wrap(err, "finding quiz results")
	}
	var docs []quizDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding quiz results")
	}
	quizzes := make([]study.QuizResult, 0, len(docs))
	for _, doc := range docs {
		quizzes = append(quizzes, doc.toQuiz())
	}
	return quizzes, nil
}

func (repo *studyRepository) CreateQuiz(ctx context.Context, quiz study.QuizResult) (study.QuizResult, error) {
	doc := quizDoc{
		ID:       uuid.New().String(),
		OwnerID:  quiz.OwnerID,
		QuizName: quiz.QuizName,
		Topic:    quiz.Topic,
		Score:    quiz.Score,
		TakenAt:  msUTC(quiz.TakenAt),
	}
	if _, err := repo.quizzes.InsertOne(ctx, doc); err != nil {
		return study.QuizResult{}, errors.Wrap(err, "inserting quiz result")
	}
	return doc.toQuiz(), nil
}
