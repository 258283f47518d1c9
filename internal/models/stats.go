package models

// MantraStat is one bucket of the per-mantra breakdown. Buckets are
// keyed by the literal mantra text, not by mantra ID.
type MantraStat struct {
	MantraText string `json:"mantraText"`
	TotalCount int64  `json:"totalCount"`
}

// UserStats is the personal practice aggregate for one user.
// TotalChants always equals the sum of the breakdown counts.
type UserStats struct {
	UserID          string
	TotalChants     int64
	StreakDays      int
	LastChantedDate string // "YYYY-MM-DD", empty if never chanted
	MantraBreakdown []MantraStat
	IsPremium       bool
}

// BreakdownTotal sums the per-mantra counts
func (s *UserStats) BreakdownTotal() int64 {
	var total int64
	for _, m := range s.MantraBreakdown {
		total += m.TotalCount
	}
	return total
}

// AddToBreakdown adds amount to the bucket for mantraText, creating the
// bucket if it does not exist yet
func (s *UserStats) AddToBreakdown(mantraText string, amount int64) {
	for i := range s.MantraBreakdown {
		if s.MantraBreakdown[i].MantraText == mantraText {
			s.MantraBreakdown[i].TotalCount += amount
			return
		}
	}
	s.MantraBreakdown = append(s.MantraBreakdown, MantraStat{
		MantraText: mantraText,
		TotalCount: amount,
	})
}
