package model

import "testing"

func TestRiskFromScore(t *testing.T) {
	cases := []struct {
		score int
		want  RiskLevel
	}{
		{-1, RiskLow},
		{0, RiskLow},
		{1, RiskMedium},
		{2, RiskHigh},
		{3, RiskHigh},
		{4, RiskCritical},
		{100, RiskCritical},
	}
	for _, c := range cases {
		if got := RiskFromScore(c.score); got != c.want {
			t.Errorf("RiskFromScore(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestRiskLevelOrderingAndMax(t *testing.T) {
	if !RiskLow.Less(RiskMedium) || !RiskMedium.Less(RiskHigh) || !RiskHigh.Less(RiskCritical) {
		t.Fatalf("expected Low < Medium < High < Critical")
	}
	if RiskCritical.Less(RiskLow) {
		t.Fatalf("Critical must not sort below Low")
	}
	if MaxRisk(RiskLow, RiskHigh) != RiskHigh {
		t.Fatalf("MaxRisk(Low, High) should be High")
	}
	if MaxRisk(RiskCritical, RiskLow) != RiskCritical {
		t.Fatalf("MaxRisk(Critical, Low) should be Critical")
	}
	if MaxRisk(RiskMedium, RiskMedium) != RiskMedium {
		t.Fatalf("MaxRisk of equal levels should return that level")
	}
}

func TestBuiltInAspectsCount(t *testing.T) {
	if len(BuiltInAspects) != 10 {
		t.Fatalf("spec section 4.2 names ten built-in aspects, got %d", len(BuiltInAspects))
	}
}
