package panel

import (
	"fmt"
	"strconv"
)

// Score thresholds. A score at or above a threshold belongs to that tier.
const (
	StrongThreshold     = 75
	BorderlineThreshold = 50
)

// Tier buckets a match score.
type Tier int

const (
	TierWeak Tier = iota
	TierBorderline
	TierStrong
)

// TierFor returns the tier for score.
func TierFor(score float64) Tier {
	switch {
	case score >= StrongThreshold:
		return TierStrong
	case score >= BorderlineThreshold:
		return TierBorderline
	default:
		return TierWeak
	}
}

func (t Tier) String() string {
	switch t {
	case TierStrong:
		return "strong"
	case TierBorderline:
		return "borderline"
	default:
		return "weak"
	}
}

// Icon is the signal shown before the score.
func (t Tier) Icon() string {
	switch t {
	case TierStrong:
		return "✅"
	case TierBorderline:
		return "⚠️"
	default:
		return "❌"
	}
}

// Color names the color the score is painted in.
func (t Tier) Color() string {
	switch t {
	case TierStrong:
		return "green"
	case TierBorderline:
		return "orange"
	default:
		return "red"
	}
}

// Match is a rendered match score.
type Match struct {
	Score  float64
	Reason string
	Tier   Tier
}

// NewMatch tiers a score.
func NewMatch(score float64, reason string) Match {
	return Match{Score: score, Reason: reason, Tier: TierFor(score)}
}

// Percent formats the score without trailing zeros, e.g. "82%" or "82.5%".
func (m Match) Percent() string {
	return strconv.FormatFloat(m.Score, 'f', -1, 64) + "%"
}

func (m Match) String() string {
	return fmt.Sprintf("%s Match Score: %s → %s", m.Tier.Icon(), m.Percent(), m.Reason)
}
