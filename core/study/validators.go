package study

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/semsync/semsync/core"
)

var (
	gradeTag  = "grade"
	gradeText = "{0} must be one of " + strings.Join(Grades, ", ")

	// Grades on the 10-point scale, best first
	Grades      = []string{"A+", "A", "B+", "B", "C+", "C", "D", "F"}
	gradePoints = map[string]int{"A+": 10, "A": 9, "B+": 8, "B": 7, "C+": 6, "C": 5, "D": 4, "F": 0}
)

// InitValidators registers the study validators. core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	core.RegisterCustomTranslation(validate, translator, gradeTag, gradeText)
}

// NormalizeGrade trims & upper-cases grade.
func NormalizeGrade(grade string) string {
	return strings.ToUpper(core.CleanString(grade))
}

// GradePoint returns the points of grade (case-insensitive), false when grade is unknown.
func GradePoint(grade string) (int, bool) {
	p, ok := gradePoints[NormalizeGrade(grade)]
	return p, ok
}

// gradeValidation accepts "" & the Grades.
func gradeValidation(fl validator.FieldLevel) bool {
	grade := NormalizeGrade(fl.Field().String())
	if grade == "" {
		return true
	}
	_, ok := gradePoints[grade]
	return ok
}
