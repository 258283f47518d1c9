package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    "u-1",
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestUserStatsAddToBreakdown(t *testing.T) {
	stats := UserStats{}

	stats.AddToBreakdown("Om Namah Shivaya", 5)
	stats.AddToBreakdown("Gayatri Mantra", 3)
	stats.AddToBreakdown("Om Namah Shivaya", 2)

	if len(stats.MantraBreakdown) != 2 {
		t.Fatalf("expected 2 breakdown buckets, got %d", len(stats.MantraBreakdown))
	}
	if stats.MantraBreakdown[0].TotalCount != 7 {
		t.Errorf("expected first bucket count 7, got %d", stats.MantraBreakdown[0].TotalCount)
	}
	if stats.BreakdownTotal() != 10 {
		t.Errorf("expected breakdown total 10, got %d", stats.BreakdownTotal())
	}
}

func TestGroupMemberHelpers(t *testing.T) {
	group := Group{
		Members: []Member{
			{ID: "u-1", Name: "Alice", Count: 1200},
			{ID: "u-2", Name: "Bob", Count: 890},
		},
	}

	if group.MemberTotal() != 2090 {
		t.Errorf("expected member total 2090, got %d", group.MemberTotal())
	}

	member := group.FindMember("u-2")
	if member == nil || member.Name != "Bob" {
		t.Fatalf("expected to find Bob, got %+v", member)
	}

	// mutation through the returned pointer must reach the roster
	member.Count += 10
	if group.Members[1].Count != 900 {
		t.Errorf("expected roster count 900 after mutation, got %d", group.Members[1].Count)
	}

	if group.FindMember("u-unknown") != nil {
		t.Error("expected nil for unknown member")
	}
}

func TestReminderFiredThisMinute(t *testing.T) {
	tests := []struct {
		name     string
		settings ReminderSettings
		date     string
		minute   string
		want     bool
	}{
		{
			name:     "never fired",
			settings: ReminderSettings{},
			date:     "2025-06-01",
			minute:   "07:00",
			want:     false,
		},
		{
			name:     "fired this minute",
			settings: ReminderSettings{LastFiredDate: "2025-06-01", LastFiredMinute: "07:00"},
			date:     "2025-06-01",
			minute:   "07:00",
			want:     true,
		},
		{
			name:     "fired same minute yesterday",
			settings: ReminderSettings{LastFiredDate: "2025-05-31", LastFiredMinute: "07:00"},
			date:     "2025-06-01",
			minute:   "07:00",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.settings.FiredThisMinute(tt.date, tt.minute)
			if result != tt.want {
				t.Errorf("FiredThisMinute() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestPracticePreferencesRequiresPremium(t *testing.T) {
	tests := []struct {
		name  string
		prefs PracticePreferences
		want  bool
	}{
		{
			name:  "defaults are free",
			prefs: DefaultPracticePreferences("u-1"),
			want:  false,
		},
		{
			name:  "ambiance is premium",
			prefs: PracticePreferences{Sound: SoundTempleBell, AmbianceSound: AmbianceDeepOm, HapticStrength: HapticMedium},
			want:  true,
		},
		{
			name:  "strong haptics are premium",
			prefs: PracticePreferences{AmbianceSound: AmbianceOff, HapticStrength: HapticStrong},
			want:  true,
		},
		{
			name:  "zen mode is premium",
			prefs: PracticePreferences{AmbianceSound: AmbianceOff, HapticStrength: HapticSoft, ZenMode: true},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.prefs.RequiresPremium()
			if result != tt.want {
				t.Errorf("RequiresPremium() = %v, want %v", result, tt.want)
			}
		})
	}
}
