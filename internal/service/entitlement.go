package service

import (
	"errors"
	"fmt"

	"omcounter/internal/repository"
)

// Free-tier limits. Premium lifts the creation cap and the member cap;
// the warn threshold is surfaced to clients as a near-limit hint.
const (
	FreeGroupCreateCap       = 2
	GroupMemberCap           = 25
	GroupMemberWarnThreshold = 20
)

// ErrUpgradeRequired means a free-tier limit or premium-only feature
// was hit. Handlers map it to an explicit upgrade prompt, never a
// silent downgrade of the requested action.
var ErrUpgradeRequired = errors.New("premium upgrade required")

// EntitlementService answers premium checks for every gated feature
type EntitlementService struct {
	statsRepo *repository.StatsRepository
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(statsRepo *repository.StatsRepository) *EntitlementService {
	return &EntitlementService{statsRepo: statsRepo}
}

// IsPremium reports whether the user holds the paid tier. Users with
// no stats row yet are free tier.
func (s *EntitlementService) IsPremium(userID string) (bool, error) {
	stats, err := s.statsRepo.GetStats(userID)
	if err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	if stats == nil {
		return false, nil
	}
	return stats.IsPremium, nil
}

// RequirePremium returns ErrUpgradeRequired unless the user is premium
func (s *EntitlementService) RequirePremium(userID string) error {
	premium, err := s.IsPremium(userID)
	if err != nil {
		return err
	}
	if !premium {
		return ErrUpgradeRequired
	}
	return nil
}
