package models

import "time"

// ReminderSettings is a user's daily practice reminder configuration.
// LastFiredMinute/LastFiredDate guard against refiring within the same
// matching minute when the scheduler polls more often than once a minute.
type ReminderSettings struct {
	UserID          string
	Enabled         bool
	TimeOfDay       string // "HH:MM", 24-hour local time
	EmailEnabled    bool
	LastFiredMinute string // "HH:MM" of the last firing
	LastFiredDate   string // "YYYY-MM-DD" of the last firing
	UpdatedAt       time.Time
}

// FiredThisMinute reports whether the reminder already fired during the
// given wall-clock minute on the given date
func (r *ReminderSettings) FiredThisMinute(date, minute string) bool {
	return r.LastFiredDate == date && r.LastFiredMinute == minute
}

// Notification is an in-app notification the client polls for
type Notification struct {
	ID        int64
	UserID    string
	Kind      string
	Message   string
	Read      bool
	CreatedAt time.Time
}
