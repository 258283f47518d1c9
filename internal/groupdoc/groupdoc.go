// Package groupdoc encodes and decodes the group sub-document that is
// stored inside the single mutable description column of the groups
// table. The roster, mantra, pooled total, announcements and premium
// flag all live in this one text field, so the codec is the only place
// allowed to touch its wire form.
package groupdoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"omcounter/internal/models"
)

// CurrentVersion is the schema version written by Encode. Decoders
// accept any version from 1 up to CurrentVersion and apply defaults for
// fields the older version lacks.
const CurrentVersion = 1

const (
	// MaxHistoryEntries bounds each member's contribution history to the
	// most recent entries.
	MaxHistoryEntries = 50

	// MaxAnnouncements bounds the announcement list, newest first.
	MaxAnnouncements = 20
)

// ErrNotStructured reports that the raw column value is not a versioned
// sub-document. Callers fall back to DecodeLegacy.
var ErrNotStructured = errors.New("description is not a structured group document")

// Document is the structured payload carried in the description column
type Document struct {
	Version       int                   `json:"v"`
	Intention     string                `json:"intention,omitempty"`
	Mantra        models.Mantra         `json:"mantra"`
	Members       []models.Member       `json:"members"`
	TotalCount    int64                 `json:"totalCount"`
	Announcements []models.Announcement `json:"announcements,omitempty"`
	IsPremium     bool                  `json:"isPremium,omitempty"`
}

// Encode serializes the document at the current version, trimming each
// member's history and the announcement list to their caps
func Encode(doc Document) (string, error) {
	doc.Version = CurrentVersion
	doc.Members = capHistories(doc.Members)
	if len(doc.Announcements) > MaxAnnouncements {
		doc.Announcements = doc.Announcements[:MaxAnnouncements]
	}
	if doc.Members == nil {
		doc.Members = []models.Member{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode group document: %w", err)
	}
	return string(data), nil
}

// Decode parses the raw description column. Structured documents decode
// fully; anything else goes through the legacy plain-text path. An empty
// column decodes to an empty but valid document.
func Decode(raw string) Document {
	doc, err := DecodeStructured(raw)
	if err != nil {
		return DecodeLegacy(raw)
	}
	return doc
}

// DecodeStructured attempts the versioned decode. It returns
// ErrNotStructured when the value is empty, not JSON, or JSON that does
// not carry a recognized version tag.
func DecodeStructured(raw string) (Document, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.HasPrefix(trimmed, "{") {
		return Document{}, ErrNotStructured
	}

	var doc Document
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrNotStructured, err)
	}
	if doc.Version < 1 || doc.Version > CurrentVersion {
		return Document{}, ErrNotStructured
	}

	return normalize(doc), nil
}

// DecodeLegacy is the explicit fallback for rows written before the
// sub-document existed: the whole column is the plain-text intention.
func DecodeLegacy(raw string) Document {
	return normalize(Document{
		Version:   CurrentVersion,
		Intention: strings.TrimSpace(raw),
	})
}

// normalize applies forward-compatible defaults so every decoded
// document has valid (never nil) collections and non-negative totals
func normalize(doc Document) Document {
	if doc.Members == nil {
		doc.Members = []models.Member{}
	}
	doc.Members = capHistories(doc.Members)
	if len(doc.Announcements) > MaxAnnouncements {
		doc.Announcements = doc.Announcements[:MaxAnnouncements]
	}
	if doc.TotalCount < 0 {
		doc.TotalCount = 0
	}
	return doc
}

func capHistories(members []models.Member) []models.Member {
	for i := range members {
		if len(members[i].History) > MaxHistoryEntries {
			members[i].History = members[i].History[len(members[i].History)-MaxHistoryEntries:]
		}
	}
	return members
}
