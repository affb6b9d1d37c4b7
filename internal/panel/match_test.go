package panel

import "testing"

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{0, TierWeak},
		{49, TierWeak},
		{49.99, TierWeak},
		{50, TierBorderline},
		{74, TierBorderline},
		{74.9, TierBorderline},
		{75, TierStrong},
		{100, TierStrong},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestTier_Signals(t *testing.T) {
	tests := []struct {
		tier        Tier
		icon, color string
	}{
		{TierStrong, "✅", "green"},
		{TierBorderline, "⚠️", "orange"},
		{TierWeak, "❌", "red"},
	}
	for _, tt := range tests {
		if tt.tier.Icon() != tt.icon || tt.tier.Color() != tt.color {
			t.Errorf("%v: icon %q color %q", tt.tier, tt.tier.Icon(), tt.tier.Color())
		}
	}
}

func TestMatch_String(t *testing.T) {
	m := NewMatch(82.5, "strong Go background")
	if got, want := m.String(), "✅ Match Score: 82.5% → strong Go background"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := NewMatch(40, "x").Percent(); got != "40%" {
		t.Errorf("Percent() = %q", got)
	}
}
