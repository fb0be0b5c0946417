package activity

import (
	"strings"

	"github.com/google/uuid"
)

// Activity is a single activity record as served by the activities API.
type Activity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	City        string `json:"city"`
	Venue       string `json:"venue"`
}

// NewID returns a fresh activity identifier.
func NewID() string {
	return uuid.NewString()
}

// NormalizeDate drops any fractional-second suffix from a date string.
// The API serializes dates like "2024-05-01T19:30:00.1234567"; everything from
// the first '.' onwards is removed.
func NormalizeDate(date string) string {
	if i := strings.IndexByte(date, '.'); i >= 0 {
		return date[:i]
	}
	return date
}

// Normalized returns a copy of the activity with its date normalized.
func (a Activity) Normalized() Activity {
	a.Date = NormalizeDate(a.Date)
	return a
}
