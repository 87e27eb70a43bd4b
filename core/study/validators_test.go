package study

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semsync/semsync/core"
)

func TestGradePoint(t *testing.T) {
	tests := []struct {
		grade  string
		want   int
		wantOk bool
	}{
		{grade: "A+", want: 10, wantOk: true},
		{grade: "a", want: 9, wantOk: true},
		{grade: " b+ ", want: 8, wantOk: true},
		{grade: "B", want: 7, wantOk: true},
		{grade: "c+", want: 6, wantOk: true},
		{grade: "C", want: 5, wantOk: true},
		{grade: "D", want: 4, wantOk: true},
		{grade: "f", want: 0, wantOk: true},
		{grade: "E"},
		{grade: "A-"},
		{grade: ""},
	}
	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			got, ok := GradePoint(tt.grade)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpectedGPA(t *testing.T) {
	tests := []struct {
		name     string
		subjects []Subject
		want     string
	}{
		{name: "no subjects", want: "N/A"},
		{
			name:     "no credits",
			subjects: []Subject{{TargetGrade: "A", Credits: 0}},
			want:     "N/A",
		},
		{
			name:     "unknown grades only",
			subjects: []Subject{{TargetGrade: "", Credits: 4}, {TargetGrade: "Z", Credits: 3}},
			want:     "N/A",
		},
		{
			name:     "single",
			subjects: []Subject{{TargetGrade: "b+", Credits: 3}},
			want:     "8.00",
		},
		{
			name: "weighted",
			subjects: []Subject{
				{TargetGrade: "A+", Credits: 4}, // 40
				{TargetGrade: "B", Credits: 3},  // 21
				{TargetGrade: "F", Credits: 2},  // 0
				{TargetGrade: "", Credits: 5},   // skipped
			},
			want: "6.78", // 61 / 9
		},
		{
			name:     "rounding",
			subjects: []Subject{{TargetGrade: "A", Credits: 2}, {TargetGrade: "C", Credits: 1}},
			want:     "7.67", // 23 / 3
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpectedGPA(tt.subjects))
		})
	}
}

func TestNewSubject_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	ns := NewSubject{Name: "  Linear Algebra ", Credits: 4, TargetGrade: " a+ ", Progress: 40}
	require.NoError(t, ns.Validate(validate))
	assert.Equal(t, "Linear Algebra", ns.Name)
	assert.Equal(t, "A+", ns.TargetGrade)

	ns = NewSubject{Name: " ", Credits: -1, TargetGrade: "E", Progress: 101}
	err := ns.Validate(validate)
	require.Error(t, err)
	errs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	fldErrs := core.TranslateErrors(errs, translator)
	assert.Equal(t, "this field is required", fldErrs["name"])
	assert.Equal(t, "targetGrade must be one of A+, A, B+, B, C+, C, D, F", fldErrs["targetGrade"])
	assert.Contains(t, fldErrs, "credits")
	assert.Contains(t, fldErrs, "progress")

	name, grade, progress := "Calculus", "", 0
	us := UpdateSubject{Name: &name, TargetGrade: &grade, Progress: &progress}
	assert.NoError(t, us.Validate(validate))

	blank := "  "
	us = UpdateSubject{Name: &blank}
	assert.Error(t, us.Validate(validate))

	tooMuch := 120
	us = UpdateSubject{Progress: &tooMuch}
	assert.Error(t, us.Validate(validate))
}

func TestNewQuiz_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	zero := float64(0)
	nq := NewQuiz{QuizName: " Midterm ", Score: &zero}
	require.NoError(t, nq.Validate(validate))
	assert.Equal(t, "Midterm", nq.QuizName)

	nq = NewQuiz{QuizName: "Midterm"}
	err := nq.Validate(validate)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"score": "this field is required"},
		core.TranslateErrors(err.(validator.ValidationErrors), translator))

	over := 100.5
	nq = NewQuiz{QuizName: "Final", Score: &over}
	assert.Error(t, nq.Validate(validate))
}
