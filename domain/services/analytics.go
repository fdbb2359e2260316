package services

import (
	"math"
	"strings"

	"futuremap/domain/core/entities"
)

// BudgetTier is the user's declared spending band
type BudgetTier string

const (
	BudgetLow    BudgetTier = "Low"
	BudgetMedium BudgetTier = "Medium"
	BudgetHigh   BudgetTier = "High"
)

// Timeline is the user's declared horizon
type Timeline string

const (
	TimelineFastTrack Timeline = "Fast Track"
	TimelineStandard  Timeline = "Standard"
	TimelineLongTerm  Timeline = "Long-Term"
)

// Rating buckets a compatibility score
type Rating string

const (
	RatingStrong   Rating = "strong"
	RatingModerate Rating = "moderate"
	RatingWeak     Rating = "weak"
)

// Profile is the user input the analysis is scored against
type Profile struct {
	Budget    BudgetTier `json:"budget" yaml:"budget"`
	Timeline  Timeline   `json:"timeline" yaml:"timeline"`
	Interests []string   `json:"interests" yaml:"interests"`
}

// DefaultProfile matches the profile a new user starts with
func DefaultProfile() Profile {
	return Profile{
		Budget:    BudgetMedium,
		Timeline:  TimelineStandard,
		Interests: []string{},
	}
}

// Policy holds the scoring constants. A budget limit of -1 means unlimited.
type Policy struct {
	MonthsPerCard     int                `yaml:"months_per_card"`
	BudgetLimits      map[BudgetTier]int `yaml:"budget_limits"`
	TimelineMonths    map[Timeline]int   `yaml:"timeline_months"`
	BudgetWeight      float64            `yaml:"budget_weight"`
	TimelineWeight    float64            `yaml:"timeline_weight"`
	InterestWeight    float64            `yaml:"interest_weight"`
	StrongThreshold   float64            `yaml:"strong_threshold"`
	ModerateThreshold float64            `yaml:"moderate_threshold"`
	SavingsRate       float64            `yaml:"savings_rate"`
}

// Unlimited marks a budget tier without an upper bound
const Unlimited = -1

// DefaultPolicy returns the stock scoring constants
func DefaultPolicy() Policy {
	return Policy{
		MonthsPerCard: 6,
		BudgetLimits: map[BudgetTier]int{
			BudgetLow:    200000,
			BudgetMedium: 500000,
			BudgetHigh:   Unlimited,
		},
		TimelineMonths: map[Timeline]int{
			TimelineFastTrack: 12,
			TimelineStandard:  36,
			TimelineLongTerm:  60,
		},
		BudgetWeight:      0.3,
		TimelineWeight:    0.3,
		InterestWeight:    0.4,
		StrongThreshold:   80,
		ModerateThreshold: 60,
		SavingsRate:       0.4,
	}
}

// PathAnalysis is the derived, read-only view of a canvas
type PathAnalysis struct {
	TotalCost             int     `json:"totalCost"`
	TotalDurationMonths   int     `json:"totalDurationMonths"`
	CardCount             int     `json:"cardCount"`
	BudgetScore           float64 `json:"budgetScore"`
	TimelineScore         float64 `json:"timelineScore"`
	InterestScore         float64 `json:"interestScore"`
	CompatibilityScore    float64 `json:"compatibilityScore"`
	Rating                Rating  `json:"rating"`
	WithinBudget          bool    `json:"withinBudget"`
	OverBudgetBy          int     `json:"overBudgetBy,omitempty"`
	WithinTimeline        bool    `json:"withinTimeline"`
	MatchingCards         int     `json:"matchingCards"`
	ScholarshipCount      int     `json:"scholarshipCount"`
	BudgetFriendlySavings int     `json:"budgetFriendlySavings"`
}

// Analyze scores a card set against a profile. Duration is a flat per-card
// estimate, not a schedule.
func Analyze(cards []*entities.Card, profile Profile, policy Policy) PathAnalysis {
	var a PathAnalysis
	a.CardCount = len(cards)

	for _, card := range cards {
		a.TotalCost += card.Cost()
		if card.Type().CountsTowardScholarships() {
			a.ScholarshipCount++
		}
		if card.TitleMatchesAny(profile.Interests) {
			a.MatchingCards++
		}
	}
	a.TotalDurationMonths = len(cards) * policy.MonthsPerCard

	if limit, ok := policy.BudgetLimits[profile.Budget]; ok {
		if limit == Unlimited || a.TotalCost <= limit {
			a.WithinBudget = true
			a.BudgetScore = 100
		} else {
			a.OverBudgetBy = a.TotalCost - limit
		}
	}

	if months, ok := policy.TimelineMonths[profile.Timeline]; ok && a.TotalDurationMonths <= months {
		a.WithinTimeline = true
		a.TimelineScore = 100
	}

	a.InterestScore = 100 * float64(a.MatchingCards) / math.Max(float64(len(cards)), 1)

	score := policy.BudgetWeight*a.BudgetScore +
		policy.TimelineWeight*a.TimelineScore +
		policy.InterestWeight*a.InterestScore
	a.CompatibilityScore = math.Min(score, 100)
	a.Rating = policy.rate(a.CompatibilityScore)
	a.BudgetFriendlySavings = int(math.Round(policy.SavingsRate * float64(a.TotalCost)))

	return a
}

func (p Policy) rate(score float64) Rating {
	switch {
	case score >= p.StrongThreshold:
		return RatingStrong
	case score >= p.ModerateThreshold:
		return RatingModerate
	default:
		return RatingWeak
	}
}

// ParseBudgetTier matches a tier name case-insensitively
func ParseBudgetTier(s string) (BudgetTier, bool) {
	for _, t := range []BudgetTier{BudgetLow, BudgetMedium, BudgetHigh} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// ParseTimeline matches a timeline name case-insensitively
func ParseTimeline(s string) (Timeline, bool) {
	for _, t := range []Timeline{TimelineFastTrack, TimelineStandard, TimelineLongTerm} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}
