package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RiskResult is the output of a per-category assessor: a 0-100 score with
// the flat cost that gets added on top of the base premium.
type RiskResult struct {
	Score int             `json:"score"`
	Cost  decimal.Decimal `json:"cost"`
	Flags []string        `json:"flags,omitempty"`
}

// RiskAssessor scores an applicant for one insurance category. Assessors
// are pure; all I/O happens before rating.
type RiskAssessor interface {
	Assess(a Applicant) RiskResult
}

// DiscountPolicy computes a per-customer premium reduction. The platform
// ships with no discount programme, so the default returns zero.
type DiscountPolicy interface {
	Discount(a Applicant, base decimal.Decimal) decimal.Decimal
}

// NoDiscount is the default DiscountPolicy.
type NoDiscount struct{}

func (NoDiscount) Discount(Applicant, decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// NoRisk is the assessor for categories without a risk programme; flat
// tier pricing applies unchanged.
type NoRisk struct{}

func (NoRisk) Assess(Applicant) RiskResult { return RiskResult{Cost: decimal.Zero} }

// --- Health ---

// Condition types that count as qualifying pre-existing conditions.
var healthConditionTypes = map[string]bool{
	"diabetes":      true,
	"hypertension":  true,
	"asthma":        true,
	"heart disease": true,
	"cancer":        true,
	"kidney disease": true,
}

var healthSeverities = map[string]bool{
	"good":     true,
	"fair":     true,
	"poor":     true,
	"critical": true,
}

// HealthRisk prices medical risk: age over 60 and qualifying pre-existing
// conditions are additive, not mutually exclusive.
type HealthRisk struct{}

func (HealthRisk) Assess(a Applicant) RiskResult {
	r := RiskResult{Cost: decimal.Zero}

	if a.Age > 60 {
		r.Score += 20
		r.Cost = r.Cost.Add(decimal.NewFromInt(500))
		r.Flags = append(r.Flags, "age_over_60")
	}

	if hasQualifyingCondition(a.Conditions) {
		r.Score += 10
		r.Cost = r.Cost.Add(decimal.NewFromInt(200))
		r.Flags = append(r.Flags, "preexisting_condition")
	}

	return r
}

func hasQualifyingCondition(conditions []MedicalCondition) bool {
	for _, c := range conditions {
		if healthConditionTypes[strings.ToLower(c.Type)] &&
			healthSeverities[strings.ToLower(c.Severity)] {
			return true
		}
	}
	return false
}

// --- Home ---

// HomeRisk prices property risk on building age and insured value.
type HomeRisk struct{}

func (HomeRisk) Assess(a Applicant) RiskResult {
	r := RiskResult{Cost: decimal.Zero}

	if a.HomeAgeYears > 20 {
		r.Score += 10
		r.Cost = r.Cost.Add(decimal.NewFromInt(150))
		r.Flags = append(r.Flags, "home_over_20y")
	}

	if a.HomeValue.GreaterThan(decimal.NewFromInt(1_000_000)) {
		r.Score += 20
		r.Cost = r.Cost.Add(decimal.NewFromInt(300))
		r.Flags = append(r.Flags, "high_home_value")
	}

	return r
}

// --- Travel ---

// TravelRisk is a three-bucket destination table: blacklisted destinations
// are high risk, whitelisted or listed-continent destinations are low risk,
// and everything else sits in a moderate middle bucket.
type TravelRisk struct {
	Blacklist  map[string]bool
	Whitelist  map[string]bool
	Continents map[string]bool
}

// NewTravelRisk builds the assessor with the shipped destination lists.
func NewTravelRisk() TravelRisk {
	return TravelRisk{
		Blacklist: destinationSet("afghanistan", "somalia", "yemen", "south sudan", "syria"),
		Whitelist: destinationSet("ghana", "kenya", "south africa", "united kingdom", "canada"),
		Continents: destinationSet("europe", "north america", "oceania"),
	}
}

func (t TravelRisk) Assess(a Applicant) RiskResult {
	dest := strings.ToLower(strings.TrimSpace(a.Destination))
	switch {
	case t.Blacklist[dest]:
		return RiskResult{Score: 40, Cost: decimal.NewFromInt(600), Flags: []string{"destination_blacklisted"}}
	case t.Whitelist[dest] || t.Continents[dest]:
		return RiskResult{Cost: decimal.Zero, Flags: []string{"destination_low_risk"}}
	default:
		return RiskResult{Score: 10, Cost: decimal.NewFromInt(150), Flags: []string{"destination_unlisted"}}
	}
}

func destinationSet(names ...string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// DefaultRiskAssessors wires the shipped per-category strategies.
// Categories without an entry rate flat.
func DefaultRiskAssessors() map[Category]RiskAssessor {
	return map[Category]RiskAssessor{
		CategoryHealth: HealthRisk{},
		CategoryHome:   HomeRisk{},
		CategoryTravel: NewTravelRisk(),
	}
}
