// Package credit scores counterparties and resolves the trading
// parameters attached to each rating bucket.
package credit

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Rating is a discrete credit tier derived from a continuous score.
type Rating string

const (
	RatingAAA Rating = "AAA"
	RatingAA  Rating = "AA"
	RatingA   Rating = "A"
	RatingBBB Rating = "BBB"
	RatingBB  Rating = "BB"
	RatingB   Rating = "B"
)

// Profile carries the six bounded sub-scores of a counterparty.
// Every sub-score must be within [0, 100]; weights sum to 1.0.
type Profile struct {
	RepaymentHistory      float64 `json:"repayment_history"`      // weight 0.30
	CollateralValue       float64 `json:"collateral_value"`       // weight 0.20
	ExternalData          float64 `json:"external_data"`          // weight 0.15
	CommunityRating       float64 `json:"community_rating"`       // weight 0.15
	TransactionCompletion float64 `json:"transaction_completion"` // weight 0.10
	ActivityLevel         float64 `json:"activity_level"`         // weight 0.10
}

// Result is the scored output consumed by the rest of the system.
type Result struct {
	TotalScore decimal.Decimal `json:"total_score"`
	Rating     Rating          `json:"rating"`
}

// Validate bounds-checks every sub-score.
func (p Profile) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"repayment_history", p.RepaymentHistory},
		{"collateral_value", p.CollateralValue},
		{"external_data", p.ExternalData},
		{"community_rating", p.CommunityRating},
		{"transaction_completion", p.TransactionCompletion},
		{"activity_level", p.ActivityLevel},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 100 {
			return errors.Errorf("credit profile field %s=%f outside [0,100]", f.name, f.value)
		}
	}
	return nil
}

// Score computes the weighted total and maps it to a rating bucket.
// The total is rounded to two decimal places before bucketing, so a raw
// 89.996 scores as 90.00 and rates AAA.
func Score(p Profile) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	total := p.RepaymentHistory*0.30 +
		p.CollateralValue*0.20 +
		p.ExternalData*0.15 +
		p.CommunityRating*0.15 +
		p.TransactionCompletion*0.10 +
		p.ActivityLevel*0.10

	score := decimal.NewFromFloat(total).Round(2)

	return Result{TotalScore: score, Rating: RatingFor(score)}, nil
}

// RatingFor maps a score to its bucket. Buckets are ordered and
// non-overlapping: >=90 AAA, >=80 AA, >=70 A, >=60 BBB, >=50 BB, else B.
func RatingFor(score decimal.Decimal) Rating {
	switch {
	case score.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return RatingAAA
	case score.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return RatingAA
	case score.GreaterThanOrEqual(decimal.NewFromInt(70)):
		return RatingA
	case score.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return RatingBBB
	case score.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return RatingBB
	default:
		return RatingB
	}
}

// Tier returns the rank of a rating, 0 for AAA through 5 for B.
// Unknown ratings rank as B.
func (r Rating) Tier() int {
	switch r {
	case RatingAAA:
		return 0
	case RatingAA:
		return 1
	case RatingA:
		return 2
	case RatingBBB:
		return 3
	case RatingBB:
		return 4
	default:
		return 5
	}
}

// AtLeast reports whether r is equal to or better than min.
// An empty min imposes no floor.
func (r Rating) AtLeast(min Rating) bool {
	if min == "" {
		return true
	}
	return r.Tier() <= min.Tier()
}
