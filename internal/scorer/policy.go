package scorer

import (
	"errors"
	"fmt"
)

// Policy holds every weight, threshold and cap of the scoring formula.
type Policy struct {
	Base float64 `mapstructure:"base"`

	RepayRatioCap     float64 `mapstructure:"repay_ratio_cap"`
	RepayWeight       float64 `mapstructure:"repay_weight"`
	DefaultRepayRatio float64 `mapstructure:"default_repay_ratio"`

	LiquidationPenalty float64 `mapstructure:"liquidation_penalty"`

	ActivityLow     float64 `mapstructure:"activity_low"`
	ActivityHigh    float64 `mapstructure:"activity_high"`
	ActivityBonus   float64 `mapstructure:"activity_bonus"`
	ActivityPenalty float64 `mapstructure:"activity_penalty"`

	DiversityWeight float64 `mapstructure:"diversity_weight"`
	DiversityCap    float64 `mapstructure:"diversity_cap"`

	DepositThreshold float64 `mapstructure:"deposit_threshold"`
	DepositScale     float64 `mapstructure:"deposit_scale"`
	DepositWeight    float64 `mapstructure:"deposit_weight"`
	DepositCap       float64 `mapstructure:"deposit_cap"`

	LongevityDays   float64 `mapstructure:"longevity_days"`
	LongevityWeight float64 `mapstructure:"longevity_weight"`
	LongevityCap    float64 `mapstructure:"longevity_cap"`

	SecondsPerDay float64 `mapstructure:"seconds_per_day"`

	MinScore int `mapstructure:"min_score"`
	MaxScore int `mapstructure:"max_score"`
}

// DefaultPolicy returns the reference weights.
func DefaultPolicy() Policy {
	return Policy{
		Base: 500,

		RepayRatioCap:     2.0,
		RepayWeight:       100,
		DefaultRepayRatio: 1.0,

		LiquidationPenalty: 50,

		ActivityLow:     0.1,
		ActivityHigh:    5,
		ActivityBonus:   100,
		ActivityPenalty: 100,

		DiversityWeight: 20,
		DiversityCap:    100,

		DepositThreshold: 1000,
		DepositScale:     10000,
		DepositWeight:    150,
		DepositCap:       150,

		LongevityDays:   365,
		LongevityWeight: 100,
		LongevityCap:    100,

		SecondsPerDay: 86400,

		MinScore: 0,
		MaxScore: 1000,
	}
}

// Validate rejects policies that would divide by zero or invert the score range.
func (p Policy) Validate() error {
	if p.MinScore > p.MaxScore {
		return fmt.Errorf("scoring.min_score (%d) exceeds scoring.max_score (%d)", p.MinScore, p.MaxScore)
	}
	if p.ActivityLow > p.ActivityHigh {
		return errors.New("scoring.activity_low must not exceed scoring.activity_high")
	}
	if p.DepositScale <= 0 {
		return errors.New("scoring.deposit_scale must be greater than zero")
	}
	if p.LongevityDays <= 0 {
		return errors.New("scoring.longevity_days must be greater than zero")
	}
	if p.SecondsPerDay <= 0 {
		return errors.New("scoring.seconds_per_day must be greater than zero")
	}
	return nil
}
