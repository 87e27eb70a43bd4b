package study

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrSubjectNotFound = errors.New("subject not found")
)

// Repository persists subjects & quiz results. Every lookup is scoped by owner in the query itself.
type Repository interface {
	// QuerySubjects returns the owner's subjects ordered by CreatedAt ascending.
	QuerySubjects(ctx context.Context, ownerID string) ([]Subject, error)
	// CreateSubject generates the subject ID.
	CreateSubject(ctx context.Context, subject Subject) (Subject, error)
	// GetSubject returns ErrSubjectNotFound when (ownerID, id) matches no subject.
	GetSubject(ctx context.Context, ownerID, id string) (Subject, error)
	// UpdateSubject overwrites the mutable fields of the subject matching (subject.OwnerID, subject.ID).
	UpdateSubject(ctx context.Context, subject Subject) (Subject, error)
	// DeleteSubject returns ErrSubjectNotFound when (ownerID, id) matches no subject.
	DeleteSubject(ctx context.Context, ownerID, id string) error

	// QueryQuizzes returns the owner's quiz results ordered by TakenAt ascending.
	QueryQuizzes(ctx context.Context, ownerID string) ([]QuizResult, error)
	// CreateQuiz generates the quiz result ID.
	CreateQuiz(ctx context.Context, quiz QuizResult) (QuizResult, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.TargetGrade = NormalizeGrade(ns.TargetGrade)
	return validate.Struct(ns)
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	if us.Name != nil {
		name := core.CleanString(*us.Name)
		us.Name = &name
	}
	if us.TargetGrade != nil {
		grade := NormalizeGrade(*us.TargetGrade)
		us.TargetGrade = &grade
	}
	return validate.Struct(us)
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.QuizName = core.CleanString(nq.QuizName)
	nq.Topic = core.CleanString(nq.Topic)
	return validate.Struct(nq)
}

// Subjects

func (svc *Service) ListSubjects(ctx context.Context, ownerID string) ([]Subject, error) {
	subjects, err := svc.repo.QuerySubjects(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []Subject{}
	}
	return subjects, nil
}

func (svc *Service) CreateSubject(ctx context.Context, ownerID string, ns NewSubject) (Subject, error) {
	subject, err := svc.repo.CreateSubject(ctx, Subject{
		OwnerID:     ownerID,
		Name:        ns.Name,
		Credits:     ns.Credits,
		TargetGrade: ns.TargetGrade,
		Progress:    ns.Progress,
		CreatedAt:   NowFunc().UTC(),
	})
	if err != nil {
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	return subject, nil
}

func (svc *Service) UpdateSubject(ctx context.Context, ownerID, id string, us UpdateSubject) (Subject, error) {
	if !validID(id) {
		return Subject{}, ErrSubjectNotFound
	}
	subject, err := svc.repo.GetSubject(ctx, ownerID, id)
	if err != nil {
		if errors.Cause(err) == ErrSubjectNotFound {
			return Subject{}, ErrSubjectNotFound
		}
		return Subject{}, errors.Wrap(err, "getting subject")
	}

	if us.Name != nil {
		subject.Name = *us.Name
	}
	if us.Credits != nil {
		subject.Credits = *us.Credits
	}
	if us.TargetGrade != nil {
		subject.TargetGrade = *us.TargetGrade
	}
	if us.Progress != nil {
		subject.Progress = *us.Progress
	}

	subject, err = svc.repo.UpdateSubject(ctx, subject)
	if err != nil {
		if errors.Cause(err) == ErrSubjectNotFound {
			return Subject{}, ErrSubjectNotFound
		}
		return Subject{}, errors.Wrap(err, "updating subject")
	}
	return subject, nil
}

func (svc *Service) DeleteSubject(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return ErrSubjectNotFound
	}
	if err := svc.repo.DeleteSubject(ctx, ownerID, id); err != nil {
		if errors.Cause(err) == ErrSubjectNotFound {
			return ErrSubjectNotFound
		}
		return errors.Wrap(err, "deleting subject")
	}
	return nil
}

// Quizzes

func (svc *Service) ListQuizHistory(ctx context.Context, ownerID string) ([]QuizResult, error) {
	quizzes, err := svc.repo.QueryQuizzes(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []QuizResult{}
	}
	return quizzes, nil
}

func (svc *Service) RecordQuiz(ctx context.Context, ownerID string, nq NewQuiz) (QuizResult, error) {
	takenAt := NowFunc().UTC()
	if nq.TakenAt != nil && !nq.TakenAt.IsZero() {
		takenAt = nq.TakenAt.UTC()
	}
	var score float64
	if nq.Score != nil {
		score = *nq.Score
	}

	quiz, err := svc.repo.CreateQuiz(ctx, QuizResult{
		OwnerID:  ownerID,
		QuizName: nq.QuizName,
		Topic:    nq.Topic,
		Score:    score,
		TakenAt:  takenAt,
	})
	if err != nil {
		return QuizResult{}, errors.Wrap(err, "recording quiz")
	}
	return quiz, nil
}

// Dashboard

func (svc *Service) Dashboard(ctx context.Context, ownerID string) (Dashboard, error) {
	subjects, err := svc.ListSubjects(ctx, ownerID)
	if err != nil {
		return Dashboard{}, err
	}
	quizzes, err := svc.ListQuizHistory(ctx, ownerID)
	if err != nil {
		return Dashboard{}, err
	}

	var credits int
	for _, s := range subjects {
		credits += s.Credits
	}
	return Dashboard{
		TotalSubjects: len(subjects),
		TotalQuizzes:  len(quizzes),
		TotalCredits:  credits,
		ExpectedGPA:   ExpectedGPA(subjects),
		Subjects:      subjects,
		QuizHistory:   quizzes,
	}, nil
}

// ExpectedGPA is the credit-weighted mean of the target grade points, formatted with 2 decimals.
// Subjects without a known grade or without credits are left out; "N/A" when none is left.
func ExpectedGPA(subjects []Subject) string {
	var credits, points int
	for _, s := range subjects {
		point, ok := GradePoint(s.TargetGrade)
		if !ok || s.Credits <= 0 {
			continue
		}
		credits += s.Credits
		points += point * s.Credits
	}
	if credits == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(float64(points)/float64(credits), 'f', 2, 64)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
