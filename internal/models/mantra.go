package models

import "time"

// Mantra is a repeated phrase with a display target count. TargetCount
// is a goal shown to the user, never an enforced ceiling.
type Mantra struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Meaning     string `json:"meaning,omitempty"`
	TargetCount int    `json:"targetCount"`
}

// PersonalMantra is a mantra in a user's private library
type PersonalMantra struct {
	Mantra
	UserID    string
	CreatedAt time.Time
}
