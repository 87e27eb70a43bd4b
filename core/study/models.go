package study

import (
	"time"
)

type Subject struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Credits     int       `json:"credits"`
	TargetGrade string    `json:"targetGrade"` // one of Grades or ""
	Progress    int       `json:"progress"`    // percent
	CreatedAt   time.Time `json:"createdAt"`   // UTC
}

type QuizResult struct {
	ID       string    `json:"id"`
	OwnerID  string    `json:"ownerId"`
	QuizName string    `json:"quizName"`
	Topic    string    `json:"topic"`
	Score    float64   `json:"score"` // percent
	TakenAt  time.Time `json:"date"`  // UTC
}

// Dashboard summarizes an owner's subjects & quizzes.
type Dashboard struct {
	TotalSubjects int          `json:"totalSubjects"`
	TotalQuizzes  int          `json:"totalQuizzes"`
	TotalCredits  int          `json:"totalCredits"`
	ExpectedGPA   string       `json:"expectedGpa"` // "N/A" when no subject is graded
	Subjects      []Subject    `json:"subjects"`
	QuizHistory   []QuizResult `json:"quizHistory"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Credits     int    `json:"credits" validate:"min=0,max=60"`
	TargetGrade string `json:"targetGrade" validate:"omitempty,grade"`
	Progress    int    `json:"progress" validate:"min=0,max=100"`
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
// Nil fields are left unchanged; an empty TargetGrade clears it.
type UpdateSubject struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	Credits     *int    `json:"credits" validate:"omitempty,min=0,max=60"`
	TargetGrade *string `json:"targetGrade" validate:"omitempty,grade"`
	Progress    *int    `json:"progress" validate:"omitempty,min=0,max=100"`
}

// NewQuiz contains information needed to record a QuizResult. TakenAt defaults to now.
type NewQuiz struct {
	QuizName string     `json:"quizName" validate:"required,notblank,max=200"`
	Topic    string     `json:"topic" validate:"max=100"`
	Score    *float64   `json:"score" validate:"required,min=0,max=100"`
	TakenAt  *time.Time `json:"date"`
}
