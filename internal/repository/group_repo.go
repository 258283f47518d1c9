package repository

import (
	"database/sql"
	"fmt"

	"omcounter/internal/database"
	"omcounter/internal/groupdoc"
	"omcounter/internal/models"
)

// GroupRepository handles the groups table and the membership hint
// index. The roster, totals and announcements travel inside the
// description column; groupdoc owns that wire form.
type GroupRepository struct {
	db *database.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *database.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroup persists a new group and the creator's membership hint
func (r *GroupRepository) CreateGroup(group *models.Group) error {
	encoded, err := groupdoc.Encode(docFromGroup(group))
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO circles (id, name, description, admin_id, mantra_text) VALUES (?, ?, ?, ?, ?)"
	if _, err := tx.Exec(query, group.ID, group.Name, encoded, group.AdminID, group.Mantra.Text); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	for _, member := range group.Members {
		query = "INSERT INTO group_memberships (group_id, user_id) VALUES (?, ?)"
		if _, err := tx.Exec(query, group.ID, member.ID); err != nil {
			return fmt.Errorf("failed to record membership hint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, or nil if it does not exist
func (r *GroupRepository) GetGroup(groupID string) (*models.Group, error) {
	query := "SELECT id, name, description, admin_id, mantra_text, created_at, updated_at FROM circles WHERE id = ?"
	return r.scanGroup(r.db.QueryRow(query, groupID))
}

// ListGroupsByMember retrieves all groups the membership hint index
// knows the user belongs to, oldest joined first
func (r *GroupRepository) ListGroupsByMember(userID string) ([]models.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.admin_id, g.mantra_text, g.created_at, g.updated_at
		FROM circles g
		INNER JOIN group_memberships gm ON g.id = gm.group_id
		WHERE gm.user_id = ?
		ORDER BY gm.joined_at ASC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	return r.collectGroups(rows)
}

// CountGroupsByAdmin counts groups the user administers, for the
// free-tier creation cap
func (r *GroupRepository) CountGroupsByAdmin(adminID string) (int, error) {
	query := "SELECT COUNT(*) FROM circles WHERE admin_id = ?"
	var count int
	if err := r.db.QueryRow(query, adminID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return count, nil
}

// AddMembershipHint records a user-to-group hint row
func (r *GroupRepository) AddMembershipHint(groupID, userID string) error {
	query := "INSERT INTO group_memberships (group_id, user_id) VALUES (?, ?)"
	if _, err := r.db.Exec(query, groupID, userID); err != nil {
		return fmt.Errorf("failed to record membership hint: %w", err)
	}
	return nil
}

// UpdateGroup re-reads the stored row inside a transaction, applies
// mutate to the freshly decoded group, and writes the result back. This
// is the reconciliation cycle: every mutator works on current remote
// state rather than a stale cached copy. Writers on the same database
// serialize on the row; across replicas the last writer still wins.
func (r *GroupRepository) UpdateGroup(groupID string, mutate func(*models.Group) error) (*models.Group, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "SELECT id, name, description, admin_id, mantra_text, created_at, updated_at FROM circles WHERE id = ?"
	group, err := r.scanGroup(tx.QueryRow(query, groupID))
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, nil
	}

	if err := mutate(group); err != nil {
		return nil, err
	}

	encoded, err := groupdoc.Encode(docFromGroup(group))
	if err != nil {
		return nil, err
	}

	query = "UPDATE circles SET name = ?, description = ?, mantra_text = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := tx.Exec(query, group.Name, encoded, group.Mantra.Text, groupID); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return group, nil
}

// scanGroup scans one group row and decodes its sub-document
func (r *GroupRepository) scanGroup(row *sql.Row) (*models.Group, error) {
	var (
		group       models.Group
		description string
	)
	err := row.Scan(
		&group.ID,
		&group.Name,
		&description,
		&group.AdminID,
		&group.Mantra.Text,
		&group.CreatedAt,
		&group.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	applyDoc(&group, groupdoc.Decode(description))
	return &group, nil
}

func (r *GroupRepository) collectGroups(rows *sql.Rows) ([]models.Group, error) {
	var groups []models.Group
	for rows.Next() {
		var (
			group       models.Group
			description string
		)
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&description,
			&group.AdminID,
			&group.Mantra.Text,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		applyDoc(&group, groupdoc.Decode(description))
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// docFromGroup projects the aggregate into its stored sub-document
func docFromGroup(group *models.Group) groupdoc.Document {
	return groupdoc.Document{
		Intention:     group.Description,
		Mantra:        group.Mantra,
		Members:       group.Members,
		TotalCount:    group.TotalGroupCount,
		Announcements: group.Announcements,
		IsPremium:     group.IsPremium,
	}
}

// applyDoc merges a decoded sub-document into the aggregate. The
// mantra_text column stays the display copy; a structured document's
// mantra wins when present.
func applyDoc(group *models.Group, doc groupdoc.Document) {
	group.Description = doc.Intention
	group.Members = doc.Members
	group.TotalGroupCount = doc.TotalCount
	group.Announcements = doc.Announcements
	group.IsPremium = doc.IsPremium
	if doc.Mantra.Text != "" {
		group.Mantra = doc.Mantra
	}
}
