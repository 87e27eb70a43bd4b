package calendar

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/semsync/semsync/core"
)

var (
	// errors
	ErrInvalidDate       = errors.New("invalid date format")
	ErrInvalidRange      = errors.New("invalid year or month")
	ErrEmptyTask         = errors.New("task is required")
	ErrInvalidCompletion = errors.New("invalid completion status")
	ErrInvalidFeeling    = errors.New("invalid feeling value")
	ErrProductivityRange = errors.New("productivity must be between 1-10")
	ErrStudyHoursRange   = errors.New("study hours must be a positive number")
)

func invalid(err error) error {
	return core.NewValidationError(err)
}

// ValidateTaskText trims text and rejects it when blank.
func ValidateTaskText(text string) (string, error) {
	text = core.CleanString(text)
	if text == "" {
		return "", invalid(ErrEmptyTask)
	}
	return text, nil
}

// ValidateFeeling accepts exactly one of AllFeelings.
func ValidateFeeling(value string) (Feeling, error) {
	for _, f := range AllFeelings {
		if Feeling(value) == f {
			return f, nil
		}
	}
	return "", invalid(ErrInvalidFeeling)
}

// ValidateProductivity coerces value to an integer in [1,10].
func ValidateProductivity(value interface{}) (int, error) {
	n, ok := toNumber(value)
	if !ok || n < 1 || n > 10 || n != math.Trunc(n) {
		return 0, invalid(ErrProductivityRange)
	}
	return int(n), nil
}

// ValidateStudyHours coerces value to a number >= 0.
func ValidateStudyHours(value interface{}) (float64, error) {
	n, ok := toNumber(value)
	if !ok || n < 0 {
		return 0, invalid(ErrStudyHoursRange)
	}
	return n, nil
}

// ValidateCompletion requires a boolean.
func ValidateCompletion(value interface{}) (bool, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return false, invalid(ErrInvalidCompletion)
}

// toNumber coerces JSON numbers & numeric strings. NaN, ±Inf, nil and blank strings are not numbers.
func toNumber(value interface{}) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case int32:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
