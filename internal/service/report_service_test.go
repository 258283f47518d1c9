package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"omcounter/internal/models"
	"omcounter/internal/repository"
)

func TestMantraSeries(t *testing.T) {
	tests := []struct {
		name      string
		breakdown []models.MantraStat
		expected  []string
	}{
		{
			name:      "empty breakdown",
			breakdown: []models.MantraStat{},
			expected:  []string{},
		},
		{
			name: "sorted descending",
			breakdown: []models.MantraStat{
				{MantraText: "Om Shanti", TotalCount: 3},
				{MantraText: "Om Namah Shivaya", TotalCount: 108},
				{MantraText: "Gayatri", TotalCount: 21},
			},
			expected: []string{"Om Namah Shivaya", "Gayatri", "Om Shanti"},
		},
		{
			name: "zero counts excluded",
			breakdown: []models.MantraStat{
				{MantraText: "Om Shanti", TotalCount: 0},
				{MantraText: "Gayatri", TotalCount: 5},
			},
			expected: []string{"Gayatri"},
		},
		{
			name: "ties keep breakdown order",
			breakdown: []models.MantraStat{
				{MantraText: "First", TotalCount: 10},
				{MantraText: "Second", TotalCount: 10},
			},
			expected: []string{"First", "Second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := mantraSeries(tt.breakdown)
			if len(series) != len(tt.expected) {
				t.Fatalf("length mismatch: got %d, want %d", len(series), len(tt.expected))
			}
			for i, text := range tt.expected {
				if series[i].MantraText != text {
					t.Errorf("position %d: got %s, want %s", i, series[i].MantraText, text)
				}
			}
		})
	}
}

func newReportEnv(t *testing.T) (*ReportService, *PracticeService, *GroupService, *repository.StatsRepository, *groupTestEnv) {
	t.Helper()

	env := newGroupEnv(t)
	statsRepo := repository.NewStatsRepository(env.db)
	mantraRepo := repository.NewMantraRepository(env.db)
	prefsRepo := repository.NewPrefsRepository(env.db)
	userRepo := repository.NewUserRepository(env.db)
	groupRepo := repository.NewGroupRepository(env.db)
	entitlement := NewEntitlementService(statsRepo)

	practice := NewPracticeService(statsRepo, mantraRepo, prefsRepo, entitlement, env.svc)
	report := NewReportService(statsRepo, groupRepo, userRepo, entitlement)
	return report, practice, env.svc, statsRepo, env
}

func TestGetDashboard(t *testing.T) {
	report, practice, groups, _, env := newReportEnv(t)
	user := env.user(t, "u-1", "Asha")

	group, err := groups.CreateGroup(user, "Asha", "Morning Circle", "", "Om Shanti")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// A personal chant and a group chant; the group chant also lands
	// in the personal ledger
	if _, err := practice.RecordIncrement(user, "Asha", "Om Namah Shivaya", 21, ""); err != nil {
		t.Fatalf("RecordIncrement failed: %v", err)
	}
	if _, err := practice.RecordIncrement(user, "Asha", "Om Shanti", 7, group.ID); err != nil {
		t.Fatalf("RecordIncrement failed: %v", err)
	}

	dashboard, err := report.GetDashboard(user)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}

	if dashboard.TotalChants != 28 {
		t.Errorf("expected total 28, got %d", dashboard.TotalChants)
	}
	if len(dashboard.MantraSeries) != 2 || dashboard.MantraSeries[0].MantraText != "Om Namah Shivaya" {
		t.Errorf("unexpected mantra series: %+v", dashboard.MantraSeries)
	}
	if len(dashboard.GroupSeries) != 1 {
		t.Fatalf("expected 1 group contribution, got %d", len(dashboard.GroupSeries))
	}
	if dashboard.GroupSeries[0].Count != 7 {
		t.Errorf("expected group contribution 7, got %d", dashboard.GroupSeries[0].Count)
	}
}

func TestExportCSVRequiresPremium(t *testing.T) {
	report, _, _, _, env := newReportEnv(t)
	user := env.user(t, "u-free", "Free")

	var buf bytes.Buffer
	if err := report.ExportCSV(user, &buf); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("expected ErrUpgradeRequired, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("rejected export must write nothing, got %q", buf.String())
	}
}

func TestExportCSVContent(t *testing.T) {
	report, practice, _, _, env := newReportEnv(t)
	user := env.user(t, "u-prem", "Asha")
	makePremium(t, env.db, user)

	if _, err := practice.RecordIncrement(user, "Asha", "Om Namah Shivaya", 108, ""); err != nil {
		t.Fatalf("RecordIncrement failed: %v", err)
	}
	if _, err := practice.RecordIncrement(user, "Asha", "Gayatri", 21, ""); err != nil {
		t.Fatalf("RecordIncrement failed: %v", err)
	}

	var buf bytes.Buffer
	if err := report.ExportCSV(user, &buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"OMCOUNTER REPORT",
		"User Email,u-prem@example.com",
		"Plan,Premium",
		"CHANTS LOG",
		"Date,Mantra,Total Count,Streak Days",
		"Om Namah Shivaya,108,1",
		"Gayatri,21,1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}

	// Highest count comes first
	if strings.Index(out, "Om Namah Shivaya,108") > strings.Index(out, "Gayatri,21") {
		t.Errorf("rows must be sorted by count descending:\n%s", out)
	}
}
