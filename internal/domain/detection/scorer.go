package detection

import (
	"math"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

const (
	typosquatWeight = 0.35
	scoreCeiling    = 0.99
)

// categoryCeilings bound each category's total contribution after the
// per-group caps already applied. Visual is the notable one: its local cap
// is 0.25 but no more than 0.20 ever reaches the final score.
var categoryCeilings = map[domain.SignalCategory]float64{
	domain.CategoryTLS:              0.20,
	domain.CategoryDomain:           0.08,
	domain.CategoryCertTransparency: 0.10,
	domain.CategoryDomainAge:        0.20,
	domain.CategoryVisual:           0.20,
	domain.CategoryForm:             0.17,
	domain.CategoryDOMBehavior:      0.13,
}

type capGroup struct {
	category domain.SignalCategory
	cap      float64
	total    float64
}

type categoryTotal struct {
	category domain.SignalCategory
	total    float64
}

// Score aggregates canonical signals into a bounded risk score in three
// stages: sum within (category, cap) groups and clip at the cap, sum the
// clipped groups per category and clip at the category ceiling, then add
// the flat typosquat contribution and round. Signals are folded in input
// order through slices so equal inputs always produce equal output.
func Score(signals []domain.CanonicalSignal, typosquat domain.TyposquatResult) domain.RiskScore {
	var groups []capGroup
	for _, s := range signals {
		idx := -1
		for i, g := range groups {
			if g.category == s.Category && g.cap == s.Cap {
				idx = i
				break
			}
		}
		if idx < 0 {
			groups = append(groups, capGroup{category: s.Category, cap: s.Cap})
			idx = len(groups) - 1
		}
		groups[idx].total += s.Weight
	}

	var categories []categoryTotal
	for _, g := range groups {
		contribution := math.Min(g.total, g.cap)
		idx := -1
		for i, c := range categories {
			if c.category == g.category {
				idx = i
				break
			}
		}
		if idx < 0 {
			categories = append(categories, categoryTotal{category: g.category})
			idx = len(categories) - 1
		}
		categories[idx].total += contribution
	}

	total := 0.0
	for _, c := range categories {
		contribution := c.total
		if ceiling, ok := categoryCeilings[c.category]; ok {
			contribution = math.Min(contribution, ceiling)
		}
		total += contribution
	}

	if typosquat.IsTyposquat {
		total += typosquatWeight
	}

	value := math.Round(total*100) / 100
	if value > scoreCeiling {
		value = scoreCeiling
	}
	if value < 0 {
		value = 0
	}

	return domain.RiskScore{Value: value, Verdict: domain.VerdictFor(value)}
}
