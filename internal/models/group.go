package models

import "time"

// MemberHistoryEntry is one recorded contribution delta for a member
type MemberHistoryEntry struct {
	Date  string `json:"date"` // RFC 3339
	Count int64  `json:"count"`
}

// Member is a practitioner inside a group. Name is a denormalized copy
// of the profile name taken at join time and may drift afterwards.
type Member struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Count      int64                `json:"count"`
	LastActive string               `json:"lastActive"` // RFC 3339
	History    []MemberHistoryEntry `json:"history,omitempty"`
}

// Announcement is an admin notice posted to a group. Immutable once
// posted; the only deletion path is list truncation.
type Announcement struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Date       string `json:"date"` // RFC 3339
	AuthorName string `json:"authorName"`
}

// Group is a chanting circle: one shared mantra, a member roster and a
// pooled counter. TotalGroupCount always equals the sum of member counts
// (absent concurrent-writer races, which are last-writer-wins).
type Group struct {
	ID              string
	Name            string
	Description     string // plain-text intention
	Mantra          Mantra
	AdminID         string
	Members         []Member
	TotalGroupCount int64
	Announcements   []Announcement
	IsPremium       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MemberTotal sums the member counts
func (g *Group) MemberTotal() int64 {
	var total int64
	for _, m := range g.Members {
		total += m.Count
	}
	return total
}

// FindMember returns the member with the given user ID, or nil
func (g *Group) FindMember(userID string) *Member {
	for i := range g.Members {
		if g.Members[i].ID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// MembershipHint is a row in the membership hint index. The group
// sub-document roster stays authoritative; hints only locate groups.
type MembershipHint struct {
	GroupID  string
	UserID   string
	JoinedAt time.Time
}
