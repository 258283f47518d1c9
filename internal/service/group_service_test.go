package service

import (
	"errors"
	"fmt"
	"testing"

	"omcounter/internal/database"
	"omcounter/internal/repository"
)

type groupTestEnv struct {
	db  *database.DB
	svc *GroupService
}

func newGroupEnv(t *testing.T) *groupTestEnv {
	t.Helper()

	db := newTestDB(t)
	statsRepo := repository.NewStatsRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	entitlement := NewEntitlementService(statsRepo)

	return &groupTestEnv{
		db:  db,
		svc: NewGroupService(groupRepo, entitlement),
	}
}

func (e *groupTestEnv) user(t *testing.T, id, name string) string {
	t.Helper()
	return seedUser(t, e.db, id, id+"@example.com", name)
}

func TestCreateGroupAddsCreatorAsSoleMember(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")

	group, err := env.svc.CreateGroup(admin, "Asha", "Morning Circle", "Daily peace practice", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if group.AdminID != admin {
		t.Errorf("expected admin %s, got %s", admin, group.AdminID)
	}
	if len(group.Members) != 1 || group.Members[0].ID != admin {
		t.Errorf("expected creator as sole member, got %+v", group.Members)
	}
	if group.Members[0].Count != 0 {
		t.Errorf("creator must start at count 0, got %d", group.Members[0].Count)
	}
	if group.IsPremium {
		t.Error("group created by a free user must not be premium")
	}
	if group.TotalGroupCount != 0 {
		t.Errorf("new group total must be 0, got %d", group.TotalGroupCount)
	}
}

func TestCreateGroupEnforcesFreeTierCap(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")

	for i := 0; i < FreeGroupCreateCap; i++ {
		if _, err := env.svc.CreateGroup(admin, "Asha", fmt.Sprintf("Circle %d", i+1), "", "Om Shanti"); err != nil {
			t.Fatalf("group %d should be allowed: %v", i+1, err)
		}
	}

	if _, err := env.svc.CreateGroup(admin, "Asha", "One Too Many", "", "Om Shanti"); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("expected ErrUpgradeRequired on group %d, got %v", FreeGroupCreateCap+1, err)
	}

	groupRepo := repository.NewGroupRepository(env.db)
	count, err := groupRepo.CountGroupsByAdmin(admin)
	if err != nil {
		t.Fatalf("CountGroupsByAdmin failed: %v", err)
	}
	if count != FreeGroupCreateCap {
		t.Errorf("rejected creation must leave no group behind, count = %d", count)
	}

	// Premium lifts the cap
	makePremium(t, env.db, admin)
	if _, err := env.svc.CreateGroup(admin, "Asha", "Premium Circle", "", "Om Shanti"); err != nil {
		t.Errorf("premium user must create past the cap: %v", err)
	}
}

func TestJoinGroupIsIdempotent(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")
	joiner := env.user(t, "u-join", "Bodhi")

	group, err := env.svc.CreateGroup(admin, "Asha", "Morning Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	joined, _, err := env.svc.JoinGroup(group.ID, joiner, "Bodhi")
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if len(joined.Members) != 2 {
		t.Fatalf("expected 2 members after join, got %d", len(joined.Members))
	}

	if _, _, err := env.svc.JoinGroup(group.ID, joiner, "Bodhi"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}

	view, err := env.svc.ViewGroup(group.ID, admin)
	if err != nil {
		t.Fatalf("ViewGroup failed: %v", err)
	}
	if view.MemberCount != 2 {
		t.Errorf("second join must not grow the roster, got %d members", view.MemberCount)
	}
}

func TestJoinGroupNotFound(t *testing.T) {
	env := newGroupEnv(t)
	joiner := env.user(t, "u-join", "Bodhi")

	if _, _, err := env.svc.JoinGroup("nosuchgrp", joiner, "Bodhi"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestJoinGroupCapacityLaw(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")

	group, err := env.svc.CreateGroup(admin, "Asha", "Full Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	var sawNearLimit bool
	for i := 1; i < GroupMemberCap; i++ {
		id := env.user(t, fmt.Sprintf("u-m%02d", i), fmt.Sprintf("Member %d", i))
		_, nearLimit, err := env.svc.JoinGroup(group.ID, id, fmt.Sprintf("Member %d", i))
		if err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
		if nearLimit {
			sawNearLimit = true
		}
	}
	if !sawNearLimit {
		t.Errorf("expected near-limit warning at %d members", GroupMemberWarnThreshold)
	}

	late := env.user(t, "u-late", "Late")
	if _, _, err := env.svc.JoinGroup(group.ID, late, "Late"); !errors.Is(err, ErrGroupFull) {
		t.Fatalf("expected ErrGroupFull at cap, got %v", err)
	}

	view, err := env.svc.ViewGroup(group.ID, admin)
	if err != nil {
		t.Fatalf("ViewGroup failed: %v", err)
	}
	if view.MemberCount != GroupMemberCap {
		t.Errorf("rejected join must leave the roster at %d, got %d", GroupMemberCap, view.MemberCount)
	}
}

func TestJoinPremiumGroupIgnoresCap(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")
	makePremium(t, env.db, admin)

	group, err := env.svc.CreateGroup(admin, "Asha", "Premium Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if !group.IsPremium {
		t.Fatal("group created by a premium user must be premium")
	}

	for i := 1; i <= GroupMemberCap; i++ {
		id := env.user(t, fmt.Sprintf("u-p%02d", i), fmt.Sprintf("Member %d", i))
		if _, nearLimit, err := env.svc.JoinGroup(group.ID, id, fmt.Sprintf("Member %d", i)); err != nil {
			t.Fatalf("premium group join %d failed: %v", i, err)
		} else if nearLimit {
			t.Errorf("premium group must not warn about capacity at member %d", i)
		}
	}
}

func TestRecordGroupIncrementKeepsTotalEqualToMemberSum(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")
	member := env.user(t, "u-m1", "Bodhi")

	group, err := env.svc.CreateGroup(admin, "Asha", "Morning Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, _, err := env.svc.JoinGroup(group.ID, member, "Bodhi"); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}

	for _, inc := range []struct {
		userID string
		amount int64
	}{
		{admin, 21},
		{member, 108},
		{admin, 1},
	} {
		if _, err := env.svc.RecordGroupIncrement(group.ID, inc.userID, "", inc.amount); err != nil {
			t.Fatalf("RecordGroupIncrement failed: %v", err)
		}
	}

	groupRepo := repository.NewGroupRepository(env.db)
	stored, err := groupRepo.GetGroup(group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}

	if stored.TotalGroupCount != stored.MemberTotal() {
		t.Errorf("total %d != member sum %d", stored.TotalGroupCount, stored.MemberTotal())
	}
	if stored.TotalGroupCount != 130 {
		t.Errorf("expected total 130, got %d", stored.TotalGroupCount)
	}
	if adminEntry := stored.FindMember(admin); adminEntry == nil || adminEntry.Count != 22 {
		t.Errorf("expected admin count 22, got %+v", adminEntry)
	}
	if len(stored.FindMember(member).History) != 1 {
		t.Errorf("expected 1 history entry for member, got %d", len(stored.FindMember(member).History))
	}
}

func TestVisibilityLaw(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")
	member := env.user(t, "u-m1", "Bodhi")
	outsider := env.user(t, "u-out", "Nobody")

	group, err := env.svc.CreateGroup(admin, "Asha", "Morning Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, _, err := env.svc.JoinGroup(group.ID, member, "Bodhi"); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if _, err := env.svc.RecordGroupIncrement(group.ID, admin, "", 50); err != nil {
		t.Fatalf("RecordGroupIncrement failed: %v", err)
	}
	if _, err := env.svc.RecordGroupIncrement(group.ID, member, "", 7); err != nil {
		t.Fatalf("RecordGroupIncrement failed: %v", err)
	}

	// Admin sees the full roster
	adminView, err := env.svc.ViewGroup(group.ID, admin)
	if err != nil {
		t.Fatalf("admin ViewGroup failed: %v", err)
	}
	if len(adminView.Members) != 2 {
		t.Errorf("admin must see the full roster, got %d members", len(adminView.Members))
	}

	// A member sees only their own record plus aggregates
	memberView, err := env.svc.ViewGroup(group.ID, member)
	if err != nil {
		t.Fatalf("member ViewGroup failed: %v", err)
	}
	if memberView.Members != nil {
		t.Errorf("member view must not carry the roster: %+v", memberView.Members)
	}
	if memberView.You == nil || memberView.You.ID != member {
		t.Fatalf("member view must carry the caller's own record, got %+v", memberView.You)
	}
	if memberView.You.Count != 7 {
		t.Errorf("expected own count 7, got %d", memberView.You.Count)
	}
	if memberView.TotalCount != 57 {
		t.Errorf("expected group total 57, got %d", memberView.TotalCount)
	}
	if memberView.MemberCount != 2 {
		t.Errorf("expected member count 2, got %d", memberView.MemberCount)
	}

	// A non-member sees nothing
	if _, err := env.svc.ViewGroup(group.ID, outsider); !errors.Is(err, ErrNotGroupMember) {
		t.Errorf("expected ErrNotGroupMember for outsider, got %v", err)
	}
}

func TestLeaderboardAdminOnlyAndRanked(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")
	m1 := env.user(t, "u-m1", "Bodhi")
	m2 := env.user(t, "u-m2", "Chandra")

	group, err := env.svc.CreateGroup(admin, "Asha", "Morning Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, id := range []string{m1, m2} {
		if _, _, err := env.svc.JoinGroup(group.ID, id, id); err != nil {
			t.Fatalf("JoinGroup failed: %v", err)
		}
	}
	for _, inc := range []struct {
		userID string
		amount int64
	}{{m1, 30}, {admin, 10}, {m2, 30}} {
		if _, err := env.svc.RecordGroupIncrement(group.ID, inc.userID, "", inc.amount); err != nil {
			t.Fatalf("RecordGroupIncrement failed: %v", err)
		}
	}

	// Leaderboard is a premium admin feature
	if _, err := env.svc.Leaderboard(group.ID, admin); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("expected ErrUpgradeRequired for free admin, got %v", err)
	}
	makePremium(t, env.db, admin)

	if _, err := env.svc.Leaderboard(group.ID, m1); !errors.Is(err, ErrNotGroupAdmin) {
		t.Fatalf("expected ErrNotGroupAdmin for member, got %v", err)
	}

	ranked, err := env.svc.Leaderboard(group.ID, admin)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	// m1 and m2 tie at 30; roster order breaks the tie
	expected := []string{m1, m2, admin}
	for i, id := range expected {
		if ranked[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, ranked[i].ID, id)
		}
	}
}

func TestPostAnnouncement(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")
	member := env.user(t, "u-m1", "Bodhi")
	makePremium(t, env.db, admin)

	group, err := env.svc.CreateGroup(admin, "Asha", "Morning Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, _, err := env.svc.JoinGroup(group.ID, member, "Bodhi"); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}

	// Premium-gated and admin-only
	if _, err := env.svc.PostAnnouncement(group.ID, member, "Bodhi", "take over"); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("expected ErrUpgradeRequired for free member, got %v", err)
	}
	makePremium(t, env.db, member)
	if _, err := env.svc.PostAnnouncement(group.ID, member, "Bodhi", "take over"); !errors.Is(err, ErrNotGroupAdmin) {
		t.Fatalf("expected ErrNotGroupAdmin, got %v", err)
	}

	updated, err := env.svc.PostAnnouncement(group.ID, admin, "Asha", "Full moon chant on Friday")
	if err != nil {
		t.Fatalf("PostAnnouncement failed: %v", err)
	}
	if len(updated.Announcements) != 1 || updated.Announcements[0].Text != "Full moon chant on Friday" {
		t.Fatalf("unexpected announcements: %+v", updated.Announcements)
	}

	second, err := env.svc.PostAnnouncement(group.ID, admin, "Asha", "Bring your own mala")
	if err != nil {
		t.Fatalf("PostAnnouncement failed: %v", err)
	}
	if second.Announcements[0].Text != "Bring your own mala" {
		t.Errorf("announcements must be newest first, got %+v", second.Announcements)
	}
}

func TestListMyGroups(t *testing.T) {
	env := newGroupEnv(t)
	admin := env.user(t, "u-admin", "Asha")
	member := env.user(t, "u-m1", "Bodhi")

	first, err := env.svc.CreateGroup(admin, "Asha", "First Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := env.svc.CreateGroup(admin, "Asha", "Second Circle", "", "Om Shanti"); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, _, err := env.svc.JoinGroup(first.ID, member, "Bodhi"); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}

	adminGroups, err := env.svc.ListMyGroups(admin)
	if err != nil {
		t.Fatalf("ListMyGroups failed: %v", err)
	}
	if len(adminGroups) != 2 {
		t.Errorf("expected admin in 2 groups, got %d", len(adminGroups))
	}

	memberGroups, err := env.svc.ListMyGroups(member)
	if err != nil {
		t.Fatalf("ListMyGroups failed: %v", err)
	}
	if len(memberGroups) != 1 || memberGroups[0].ID != first.ID {
		t.Errorf("expected member in exactly the first group, got %+v", memberGroups)
	}
	if memberGroups[0].Members != nil {
		t.Errorf("member listing must stay roster-free, got %+v", memberGroups[0].Members)
	}
}
