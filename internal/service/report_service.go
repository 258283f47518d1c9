package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"omcounter/internal/models"
	"omcounter/internal/repository"
)

// ReportService derives read-only dashboard aggregates and the CSV
// export. It never mutates practice or group state.
type ReportService struct {
	statsRepo   *repository.StatsRepository
	groupRepo   *repository.GroupRepository
	userRepo    *repository.UserRepository
	entitlement *EntitlementService
}

// NewReportService creates a new report service
func NewReportService(statsRepo *repository.StatsRepository, groupRepo *repository.GroupRepository, userRepo *repository.UserRepository, entitlement *EntitlementService) *ReportService {
	return &ReportService{
		statsRepo:   statsRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		entitlement: entitlement,
	}
}

// GroupContribution is one dashboard point: the caller's own count in
// one of their groups
type GroupContribution struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	Count     int64  `json:"count"`
}

// Dashboard is the read-only aggregate view for one user
type Dashboard struct {
	TotalChants     int64               `json:"totalChants"`
	StreakDays      int                 `json:"streakDays"`
	LastChantedDate string              `json:"lastChantedDate,omitempty"`
	IsPremium       bool                `json:"isPremium"`
	MantraSeries    []models.MantraStat `json:"mantraSeries"`
	GroupSeries     []GroupContribution `json:"groupSeries"`
}

// GetDashboard builds the dashboard for a user: per-mantra totals
// sorted descending with zero-count buckets dropped, and the caller's
// contribution to each group they belong to.
func (s *ReportService) GetDashboard(userID string) (*Dashboard, error) {
	stats, err := s.statsRepo.EnsureStats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	dashboard := &Dashboard{
		TotalChants:     stats.TotalChants,
		StreakDays:      stats.StreakDays,
		LastChantedDate: stats.LastChantedDate,
		IsPremium:       stats.IsPremium,
		MantraSeries:    mantraSeries(stats.MantraBreakdown),
		GroupSeries:     []GroupContribution{},
	}

	groups, err := s.groupRepo.ListGroupsByMember(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	for i := range groups {
		var count int64
		if member := groups[i].FindMember(userID); member != nil {
			count = member.Count
		}
		dashboard.GroupSeries = append(dashboard.GroupSeries, GroupContribution{
			GroupID:   groups[i].ID,
			GroupName: groups[i].Name,
			Count:     count,
		})
	}

	return dashboard, nil
}

// ExportCSV writes the user's practice data as CSV: a metadata header
// block followed by one row per mantra. Premium only.
func (s *ReportService) ExportCSV(userID string, w io.Writer) error {
	if err := s.entitlement.RequirePremium(userID); err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userID)
	}

	stats, err := s.statsRepo.EnsureStats(userID)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	now := time.Now()
	lastLogin := "Current Session"
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.Format(time.RFC3339)
	}

	writer := csv.NewWriter(w)
	header := [][]string{
		{"OMCOUNTER REPORT", ""},
		{"Generated At", now.Format(time.RFC3339)},
		{"User Name", user.Name},
		{"User Email", user.Email},
		{"Last Login Time", lastLogin},
		{"Plan", planName(stats.IsPremium)},
		{""},
		{"CHANTS LOG", "", "", ""},
		{"Date", "Mantra", "Total Count", "Streak Days"},
	}
	for _, row := range header {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
	}

	// Snapshot rows: the breakdown holds lifetime totals, so every row
	// carries today's date and the current streak.
	date := localDate(now)
	for _, stat := range mantraSeries(stats.MantraBreakdown) {
		row := []string{date, stat.MantraText, strconv.FormatInt(stat.TotalCount, 10), strconv.Itoa(stats.StreakDays)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// mantraSeries sorts a copy of the breakdown by count descending,
// dropping zero-count buckets. Ties keep breakdown order.
func mantraSeries(breakdown []models.MantraStat) []models.MantraStat {
	series := make([]models.MantraStat, 0, len(breakdown))
	for _, stat := range breakdown {
		if stat.TotalCount > 0 {
			series = append(series, stat)
		}
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].TotalCount > series[j].TotalCount
	})
	return series
}

func planName(premium bool) string {
	if premium {
		return "Premium"
	}
	return "Free"
}
