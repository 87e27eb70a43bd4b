package calendar

import "time"

type Feeling string

// Feelings
const (
	FeelingGood Feeling = "Good"
	FeelingOkay Feeling = "Okay"
	FeelingBad  Feeling = "Bad"
)

var AllFeelings = []Feeling{FeelingGood, FeelingOkay, FeelingBad}

// journal defaults, returned when nothing has been saved for a day
const (
	DefaultFeeling      = FeelingGood
	DefaultProductivity = 5
	DefaultStudyHours   = 0
)

type Task struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Text      string    `json:"task"`
	Date      Date      `json:"date"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

type JournalEntry struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Date         Date      `json:"date"`
	Feeling      Feeling   `json:"feeling"`
	Productivity int       `json:"productivity"`
	StudyHours   float64   `json:"studyHours"`
	Content      string    `json:"content"`
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

// DefaultJournal returns the entry shown for a day without a saved journal.
// It has no ID and must never be written back as is.
func DefaultJournal(ownerID string, date Date) JournalEntry {
	return JournalEntry{
		OwnerID:      ownerID,
		Date:         date,
		Feeling:      DefaultFeeling,
		Productivity: DefaultProductivity,
		StudyHours:   DefaultStudyHours,
	}
}

// IsStored reports whether the entry comes from the store (as opposed to DefaultJournal).
func (e JournalEntry) IsStored() bool { return e.ID != "" }

// MonthView groups a month's records by canonical date.
type MonthView struct {
	Tasks    map[string][]Task       `json:"tasks"`
	Journals map[string]JournalEntry `json:"journals"`
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Task string `json:"task"`
	Date string `json:"date"`
}

// SetCompletion is the body of a task completion update. Completed must be a JSON boolean.
type SetCompletion struct {
	Completed interface{} `json:"completed"`
}

// SaveJournal contains the fields of a journal save.
// Productivity & StudyHours accept JSON numbers or numeric strings.
type SaveJournal struct {
	Date         string      `json:"date"`
	Feeling      string      `json:"feeling"`
	Productivity interface{} `json:"productivity"`
	StudyHours   interface{} `json:"studyHours"`
	Content      string      `json:"content"`
}

// Filter selects an owner's records between two days (inclusive).
type Filter struct {
	OwnerID string
	From    Date
	To      Date
}

func DayFilter(ownerID string, date Date) Filter {
	return Filter{OwnerID: ownerID, From: date, To: date}
}

func (f Filter) Match(ownerID string, date Date) bool {
	return ownerID == f.OwnerID && date.Within(f.From, f.To)
}
