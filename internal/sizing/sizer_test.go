package sizing

import (
	"math"
	"testing"
)

func TestRiskBasedCapBinds(t *testing.T) {
	// 2% of 10000 = 200 risk, $2/share stop distance -> 100 shares naive,
	// but 100 * $50 = 5000 exceeds the 20% cap (2000) -> 40 shares.
	rec, err := RiskBased(10000, 50, 48, 2, 0)
	if err != nil {
		t.Fatalf("RiskBased: %v", err)
	}
	if rec.Shares != 40 {
		t.Errorf("Shares = %d, want 40 (cap-bound)", rec.Shares)
	}
	if rec.Value != 2000 {
		t.Errorf("Value = %v, want 2000", rec.Value)
	}
}

func TestRiskBasedUncapped(t *testing.T) {
	// 1% of 100000 = 1000 risk, $5/share -> 200 shares, value 2000 (2%).
	rec, err := RiskBased(100000, 10, 5, 1, 0)
	if err != nil {
		t.Fatalf("RiskBased: %v", err)
	}
	if rec.Shares != 200 {
		t.Errorf("Shares = %d, want 200", rec.Shares)
	}
}

func TestRiskBasedZeroStopDistance(t *testing.T) {
	rec, err := RiskBased(10000, 50, 50, 2, 0)
	if err != nil {
		t.Fatalf("RiskBased: %v", err)
	}
	if rec.Shares != 0 || rec.Value != 0 {
		t.Errorf("zero stop distance sized %+v, want zero", rec)
	}
}

func TestRiskBasedErrors(t *testing.T) {
	if _, err := RiskBased(0, 50, 48, 2, 0); err == nil {
		t.Error("zero portfolio: want error")
	}
	if _, err := RiskBased(10000, 0, 48, 2, 0); err == nil {
		t.Error("zero entry: want error")
	}
}

func TestHalfKelly(t *testing.T) {
	// 60% win rate, 2:1 payoff -> kelly = (0.6*2 - 0.4)/2 = 0.40, clamped to
	// 0.25, halved -> 12.5%.
	got := HalfKelly(0.6, 200, 100)
	if math.Abs(got-12.5) > 1e-9 {
		t.Errorf("HalfKelly = %v, want 12.5", got)
	}

	// Negative edge clamps to zero.
	if got := HalfKelly(0.3, 100, 100); got != 0 {
		t.Errorf("negative-edge kelly = %v, want 0", got)
	}

	if got := HalfKelly(0.6, 200, 0); got != 0 {
		t.Errorf("zero avg loss kelly = %v, want 0", got)
	}
	if got := HalfKelly(1.5, 200, 100); got != 0 {
		t.Errorf("out-of-range win rate kelly = %v, want 0", got)
	}
}

func TestFixedFractional(t *testing.T) {
	if got := FixedFractional(10000, 2); got != 200 {
		t.Errorf("FixedFractional = %v, want 200", got)
	}
}

func TestVolatilityTarget(t *testing.T) {
	// At target volatility the fraction is 10%.
	if got := VolatilityTarget(10000, 15, 0); got != 1000 {
		t.Errorf("at-target size = %v, want 1000", got)
	}
	// Half the target volatility doubles the fraction.
	if got := VolatilityTarget(10000, 7.5, 0); got != 2000 {
		t.Errorf("low-vol size = %v, want 2000", got)
	}
	// Very low volatility is capped at the max position percentage.
	if got := VolatilityTarget(10000, 1, 0); got != 2000 {
		t.Errorf("capped size = %v, want 2000", got)
	}
	// Invalid volatility falls back to 10%.
	if got := VolatilityTarget(10000, 0, 0); got != 1000 {
		t.Errorf("fallback size = %v, want 1000", got)
	}
}

func TestEqualWeight(t *testing.T) {
	if got := EqualWeight(10000, 10, 0); got != 1000 {
		t.Errorf("EqualWeight(10) = %v, want 1000", got)
	}
	// Few positions hit the cap.
	if got := EqualWeight(10000, 2, 0); got != 2000 {
		t.Errorf("EqualWeight(2) = %v, want 2000 (capped)", got)
	}
	if got := EqualWeight(10000, 0, 0); got != 0 {
		t.Errorf("EqualWeight(0) = %v, want 0", got)
	}
}

func TestRiskParity(t *testing.T) {
	out := RiskParity(10000, []float64{10, 20}, 50)
	if len(out) != 2 {
		t.Fatalf("RiskParity returned %d legs, want 2", len(out))
	}
	// Inverse vols 0.1 and 0.05: weights 2/3 and 1/3.
	if math.Abs(out[0]-10000*2.0/3.0) > 1e-9 {
		t.Errorf("leg 0 = %v, want %v", out[0], 10000*2.0/3.0)
	}
	if math.Abs(out[1]-10000/3.0) > 1e-9 {
		t.Errorf("leg 1 = %v, want %v", out[1], 10000/3.0)
	}

	// Default 20% cap applies per leg.
	capped := RiskParity(10000, []float64{10, 20}, 0)
	if capped[0] != 2000 {
		t.Errorf("capped leg 0 = %v, want 2000", capped[0])
	}

	if RiskParity(10000, []float64{0, 0}, 0) != nil {
		t.Error("all-zero basket should return nil")
	}
	if RiskParity(10000, nil, 0) != nil {
		t.Error("empty basket should return nil")
	}
}

func TestValidate(t *testing.T) {
	// Comfortable 5% position: no findings.
	v := Validate(10000, 500, 1, 0)
	if !v.Valid || len(v.Errors) != 0 || len(v.Warnings) != 0 {
		t.Errorf("5%% position flagged: %+v", v)
	}

	// Over the cap: invalid.
	v = Validate(10000, 2500, 1, 0)
	if v.Valid || len(v.Errors) == 0 {
		t.Errorf("25%% position not rejected: %+v", v)
	}

	// 16%: concentration warning only.
	v = Validate(10000, 1600, 1, 0)
	if !v.Valid || len(v.Warnings) == 0 {
		t.Errorf("16%% position missing concentration warning: %+v", v)
	}

	// Under 1%: uneconomical warning.
	v = Validate(10000, 50, 1, 0)
	if !v.Valid || len(v.Warnings) == 0 {
		t.Errorf("0.5%% position missing warning: %+v", v)
	}

	// 9 positions at 10% each: exposure warning.
	v = Validate(10000, 1000, 9, 0)
	if len(v.Warnings) == 0 {
		t.Errorf("90%% exposure missing warning: %+v", v)
	}
}

func TestScalePlan(t *testing.T) {
	// 100000 portfolio, entry 10, stop 5, 1% risk -> 200 shares.
	plan, err := ScalePlan(100000, 10, 5, 1, 0, 3)
	if err != nil {
		t.Fatalf("ScalePlan: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("plan has %d entries, want 3", len(plan))
	}
	total := 0
	for _, e := range plan {
		total += e.Shares
	}
	if total != 200 {
		t.Errorf("plan shares sum to %d, want 200", total)
	}
	// 200/3 = 66 per entry; last takes the remainder.
	if plan[0].Shares != 66 || plan[2].Shares != 68 {
		t.Errorf("share split = %d/%d/%d, want 66/66/68",
			plan[0].Shares, plan[1].Shares, plan[2].Shares)
	}
	// Entries step down 2% each.
	if plan[1].TargetPrice != 10*0.98 {
		t.Errorf("entry 2 price = %v, want %v", plan[1].TargetPrice, 10*0.98)
	}

	// Zero-share plan is nil.
	plan, err = ScalePlan(100000, 10, 10, 1, 0, 3)
	if err != nil || plan != nil {
		t.Errorf("zero-share plan = %v, %v, want nil, nil", plan, err)
	}
}
