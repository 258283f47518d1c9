package service

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"omcounter/internal/groupdoc"
	"omcounter/internal/models"
	"omcounter/internal/repository"
	"omcounter/internal/security"
	"omcounter/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrAlreadyMember  = errors.New("already a member of this group")
	ErrGroupFull      = errors.New("group has reached its member limit")
	ErrNotGroupAdmin  = errors.New("only the group admin may do this")
	ErrNotGroupMember = errors.New("not a member of this group")
)

// GroupService owns chanting circles: creation, membership, the pooled
// counter and announcements. Every mutation goes through the
// repository's read-modify-write cycle so deltas apply to the freshest
// stored roster; concurrent writers can still race, last writer wins.
type GroupService struct {
	groupRepo   *repository.GroupRepository
	entitlement *EntitlementService
}

// NewGroupService creates a new group service
func NewGroupService(groupRepo *repository.GroupRepository, entitlement *EntitlementService) *GroupService {
	return &GroupService{
		groupRepo:   groupRepo,
		entitlement: entitlement,
	}
}

// GroupView is a caller-role-filtered projection of a group. Members
// and Leaderboard are populated for the admin only; everyone else sees
// their own record plus group-level aggregates.
type GroupView struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Intention     string                `json:"intention"`
	Mantra        models.Mantra         `json:"mantra"`
	AdminID       string                `json:"adminId"`
	IsPremium     bool                  `json:"isPremium"`
	MemberCount   int                   `json:"memberCount"`
	TotalCount    int64                 `json:"totalCount"`
	LastActivity  string                `json:"lastActivity,omitempty"`
	NearCapacity  bool                  `json:"nearCapacity"`
	You           *models.Member        `json:"you,omitempty"`
	Announcements []models.Announcement `json:"announcements"`
	Members       []models.Member       `json:"members,omitempty"`
}

// CreateGroup creates a chanting circle with the creator as its sole
// member. Free-tier creators are capped at FreeGroupCreateCap groups;
// the group's premium flag is stamped from the creator's entitlement
// at creation time and never re-evaluated.
func (s *GroupService) CreateGroup(adminID, adminName, name, intention, mantraText string) (*models.Group, error) {
	if err := validation.ValidateGroupName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateMantraText(mantraText); err != nil {
		return nil, err
	}

	premium, err := s.entitlement.IsPremium(adminID)
	if err != nil {
		return nil, err
	}
	if !premium {
		count, err := s.groupRepo.CountGroupsByAdmin(adminID)
		if err != nil {
			return nil, fmt.Errorf("failed to count groups: %w", err)
		}
		if count >= FreeGroupCreateCap {
			return nil, ErrUpgradeRequired
		}
	}

	groupID, err := security.GenerateShareCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate group id: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	group := &models.Group{
		ID:          groupID,
		Name:        name,
		Description: intention,
		Mantra: models.Mantra{
			ID:          uuid.New().String(),
			Text:        mantraText,
			TargetCount: 108,
		},
		AdminID: adminID,
		Members: []models.Member{
			{ID: adminID, Name: adminName, Count: 0, LastActive: now, History: []models.MemberHistoryEntry{}},
		},
		IsPremium: premium,
	}

	if err := s.groupRepo.CreateGroup(group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// JoinGroup adds the user to the roster with a zero count. The second
// return value reports whether a free-tier group is nearing its member
// cap so clients can warn the admin.
func (s *GroupService) JoinGroup(groupID, userID, userName string) (*models.Group, bool, error) {
	group, err := s.groupRepo.UpdateGroup(groupID, func(g *models.Group) error {
		if g.FindMember(userID) != nil {
			return ErrAlreadyMember
		}
		if !g.IsPremium && len(g.Members) >= GroupMemberCap {
			return ErrGroupFull
		}
		g.Members = append(g.Members, models.Member{
			ID:         userID,
			Name:       userName,
			Count:      0,
			LastActive: time.Now().Format(time.RFC3339),
			History:    []models.MemberHistoryEntry{},
		})
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if group == nil {
		return nil, false, ErrGroupNotFound
	}

	// Hint rows only locate groups; the roster stays authoritative
	if err := s.groupRepo.AddMembershipHint(groupID, userID); err != nil {
		log.Printf("Warning: failed to record membership hint for group %s user %s: %v", groupID, userID, err)
	}

	nearLimit := !group.IsPremium && len(group.Members) >= GroupMemberWarnThreshold
	return group, nearLimit, nil
}

// RecordGroupIncrement charges amount to the caller's member entry and
// the pooled total. The stored group is re-read inside the update so
// the delta lands on the freshest roster.
func (s *GroupService) RecordGroupIncrement(groupID, userID, userName string, amount int64) (*models.Group, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, err
	}

	joined := false
	group, err := s.groupRepo.UpdateGroup(groupID, func(g *models.Group) error {
		now := time.Now().Format(time.RFC3339)
		member := g.FindMember(userID)
		if member == nil {
			g.Members = append(g.Members, models.Member{
				ID:         userID,
				Name:       userName,
				LastActive: now,
				History:    []models.MemberHistoryEntry{},
			})
			member = &g.Members[len(g.Members)-1]
			joined = true
		}
		member.Count += amount
		member.LastActive = now
		member.History = append(member.History, models.MemberHistoryEntry{Date: now, Count: amount})
		if len(member.History) > groupdoc.MaxHistoryEntries {
			member.History = member.History[len(member.History)-groupdoc.MaxHistoryEntries:]
		}
		g.TotalGroupCount += amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	if joined {
		if err := s.groupRepo.AddMembershipHint(groupID, userID); err != nil {
			log.Printf("Warning: failed to record membership hint for group %s user %s: %v", groupID, userID, err)
		}
	}

	return group, nil
}

// PostAnnouncement posts an admin notice. Announcements are a premium
// feature; the list keeps only the most recent entries, newest first.
func (s *GroupService) PostAnnouncement(groupID, callerID, authorName, text string) (*models.Group, error) {
	if text == "" {
		return nil, validation.ValidationError{Field: "text", Message: "announcement text is required"}
	}
	if err := s.entitlement.RequirePremium(callerID); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.UpdateGroup(groupID, func(g *models.Group) error {
		if g.AdminID != callerID {
			return ErrNotGroupAdmin
		}
		announcement := models.Announcement{
			ID:         uuid.New().String(),
			Text:       text,
			Date:       time.Now().Format(time.RFC3339),
			AuthorName: authorName,
		}
		g.Announcements = append([]models.Announcement{announcement}, g.Announcements...)
		if len(g.Announcements) > groupdoc.MaxAnnouncements {
			g.Announcements = g.Announcements[:groupdoc.MaxAnnouncements]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	return group, nil
}

// ViewGroup returns the caller's role-filtered view of a group. Admins
// see the full roster; members see their own record and group-level
// aggregates only.
func (s *GroupService) ViewGroup(groupID, callerID string) (*GroupView, error) {
	group, err := s.groupRepo.GetGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	member := group.FindMember(callerID)
	if member == nil && group.AdminID != callerID {
		return nil, ErrNotGroupMember
	}

	return s.buildView(group, callerID), nil
}

// ListMyGroups returns the caller's view of every group located via
// the membership hint index
func (s *GroupService) ListMyGroups(userID string) ([]GroupView, error) {
	groups, err := s.groupRepo.ListGroupsByMember(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	views := make([]GroupView, 0, len(groups))
	for i := range groups {
		views = append(views, *s.buildView(&groups[i], userID))
	}
	return views, nil
}

// Leaderboard returns the roster ranked by count descending, ties kept
// in roster order. Admin-only and premium-gated.
func (s *GroupService) Leaderboard(groupID, callerID string) ([]models.Member, error) {
	group, err := s.groupRepo.GetGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if group.AdminID != callerID {
		return nil, ErrNotGroupAdmin
	}
	if err := s.entitlement.RequirePremium(callerID); err != nil {
		return nil, err
	}

	return rankMembers(group.Members), nil
}

func (s *GroupService) buildView(group *models.Group, callerID string) *GroupView {
	view := &GroupView{
		ID:            group.ID,
		Name:          group.Name,
		Intention:     group.Description,
		Mantra:        group.Mantra,
		AdminID:       group.AdminID,
		IsPremium:     group.IsPremium,
		MemberCount:   len(group.Members),
		TotalCount:    group.TotalGroupCount,
		LastActivity:  latestActivity(group.Members),
		NearCapacity:  !group.IsPremium && len(group.Members) >= GroupMemberWarnThreshold,
		Announcements: group.Announcements,
	}
	if view.Announcements == nil {
		view.Announcements = []models.Announcement{}
	}

	if member := group.FindMember(callerID); member != nil {
		own := *member
		view.You = &own
	}

	if group.AdminID == callerID {
		view.Members = append([]models.Member{}, group.Members...)
	}

	return view
}

// rankMembers sorts a copy of the roster by count descending. The
// stable sort keeps ties in roster insertion order.
func rankMembers(members []models.Member) []models.Member {
	ranked := append([]models.Member{}, members...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// latestActivity returns the most recent member activity timestamp.
// RFC 3339 strings compare correctly as strings.
func latestActivity(members []models.Member) string {
	var latest string
	for _, m := range members {
		if m.LastActive > latest {
			latest = m.LastActive
		}
	}
	return latest
}
