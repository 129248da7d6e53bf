package domain

import (
	"fmt"
	"strings"
)

type Tier int

const (
	TierBronze Tier = iota + 1
	TierSilver
	TierGold
	TierPlatinum
)

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

func (t Tier) Valid() bool {
	return t >= TierBronze && t <= TierPlatinum
}

// Rank orders tiers ascending from cheapest to most expensive.
func (t Tier) Rank() int {
	return int(t)
}

func ParseTier(value string) (Tier, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "bronze":
		return TierBronze, nil
	case "silver":
		return TierSilver, nil
	case "gold":
		return TierGold, nil
	case "platinum":
		return TierPlatinum, nil
	default:
		return 0, fmt.Errorf("%w: unknown tier %q", ErrPlanNotFound, value)
	}
}

type PlanID string

type SubscriptionPlan struct {
	ID            PlanID
	Name          string
	Tier          Tier
	VMQuota       int
	BackupQuotaMB int64
}

// Transition classifies a plan change relative to the current plan.
type Transition string

const (
	TransitionUpgrading   Transition = "upgrading"
	TransitionDowngrading Transition = "downgrading"
)

// ClassifyTransition labels the move from current to candidate. The
// catalog is totally ordered by rank, so equal rank never reaches here.
func ClassifyTransition(current, candidate SubscriptionPlan) Transition {
	if candidate.Tier.Rank() > current.Tier.Rank() {
		return TransitionUpgrading
	}
	return TransitionDowngrading
}

// PlanCatalog returns the static plan catalog, ordered by ascending rank.
func PlanCatalog() []SubscriptionPlan {
	return []SubscriptionPlan{
		{ID: "plan-bronze", Name: "Bronze", Tier: TierBronze, VMQuota: 2, BackupQuotaMB: 1_024},
		{ID: "plan-silver", Name: "Silver", Tier: TierSilver, VMQuota: 5, BackupQuotaMB: 5_120},
		{ID: "plan-gold", Name: "Gold", Tier: TierGold, VMQuota: 10, BackupQuotaMB: 20_480},
		{ID: "plan-platinum", Name: "Platinum", Tier: TierPlatinum, VMQuota: 25, BackupQuotaMB: 102_400},
	}
}

// PlanByTier resolves a catalog entry by tier.
func PlanByTier(tier Tier) (SubscriptionPlan, error) {
	for _, plan := range PlanCatalog() {
		if plan.Tier == tier {
			return plan, nil
		}
	}
	return SubscriptionPlan{}, fmt.Errorf("%w: tier %s", ErrPlanNotFound, tier)
}
