package domain

import "time"

// Holiday excludes a date from the business calendar. Recurring holidays match
// the same month/day every year regardless of the stored year.
type Holiday struct {
	ID          string
	Day         time.Time
	Name        string
	IsRecurring bool
	CreatedAt   time.Time
}
