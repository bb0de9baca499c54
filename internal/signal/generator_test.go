package signal

import (
	"strings"
	"testing"

	"quantlab/internal/domain"
)

// frameFromCloses builds a frame of n bars with the given closes and no
// indicator columns. Tests attach columns as needed.
func frameFromCloses(closes ...float64) *domain.Frame {
	f := &domain.Frame{Bars: make([]domain.Bar, len(closes))}
	for i, c := range closes {
		f.Bars[i] = domain.Bar{
			Open: c, High: c, Low: c, Close: c, Volume: 1000,
		}
	}
	return f
}

// column returns a slice of n copies of v, for attaching flat indicator
// columns.
func column(n int, v float64) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = v
	}
	return col
}

func TestGenerateShortHistoryNeutral(t *testing.T) {
	f := frameFromCloses(100)
	for _, strat := range []Strategy{Composite, RSIStrategy, MACDCrossover, MovingAverage, Bollinger, Momentum} {
		got, err := Generate(f, strat, Moderate)
		if err != nil {
			t.Fatalf("Generate(%s): %v", strat, err)
		}
		if got.Action != domain.Hold || got.Strength != 5 || got.Confidence != 50 {
			t.Errorf("Generate(%s) = %s/%d/%d, want HOLD/5/50",
				strat, got.Action, got.Strength, got.Confidence)
		}
	}
}

func TestGenerateUnknownStrategy(t *testing.T) {
	f := frameFromCloses(100, 101)
	if _, err := Generate(f, Strategy("Astrology"), Moderate); err == nil {
		t.Fatal("Generate with unknown strategy: want error, got nil")
	}
}

func TestRSIOversoldBuy(t *testing.T) {
	f := frameFromCloses(100, 99)
	f.RSI = column(2, 20)

	got, err := Generate(f, RSIStrategy, Moderate)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != domain.Buy {
		t.Fatalf("action = %s, want BUY", got.Action)
	}
	if got.Strength != 3 {
		t.Errorf("strength = %d, want 3", got.Strength)
	}
	if got.Confidence != 80 {
		t.Errorf("confidence = %d, want 80", got.Confidence)
	}
	if len(got.Reasons) != 1 || !strings.Contains(got.Reasons[0], "oversold") {
		t.Errorf("reasons = %v, want oversold mention", got.Reasons)
	}
}

func TestRSIOverboughtSell(t *testing.T) {
	f := frameFromCloses(100, 101)
	f.RSI = column(2, 85)

	got, _ := Generate(f, RSIStrategy, Moderate)
	if got.Action != domain.Sell {
		t.Fatalf("action = %s, want SELL", got.Action)
	}
	if got.Strength != 5 {
		t.Errorf("strength = %d, want 5", got.Strength)
	}
	if got.Confidence != 85 {
		t.Errorf("confidence = %d, want 85", got.Confidence)
	}
}

func TestRSISensitivityThresholds(t *testing.T) {
	f := frameFromCloses(100, 99)
	f.RSI = column(2, 27)

	tests := []struct {
		sensitivity Sensitivity
		want        domain.Action
	}{
		{Conservative, domain.Hold}, // oversold at 25
		{Moderate, domain.Buy},      // oversold at 30
		{Aggressive, domain.Buy},    // oversold at 35
	}
	for _, tt := range tests {
		got, _ := Generate(f, RSIStrategy, tt.sensitivity)
		if got.Action != tt.want {
			t.Errorf("%s: action = %s, want %s", tt.sensitivity, got.Action, tt.want)
		}
	}
}

func TestRSIMissingColumnNeutral(t *testing.T) {
	f := frameFromCloses(100, 101)
	got, _ := Generate(f, RSIStrategy, Moderate)
	if got.Action != domain.Hold || got.Confidence != 50 {
		t.Errorf("missing RSI column: got %s/%d, want HOLD/50", got.Action, got.Confidence)
	}
}

func TestMACDBullishCrossover(t *testing.T) {
	f := frameFromCloses(100, 101)
	f.MACD = []float64{-0.2, 0.3}
	f.MACDSignal = []float64{0, 0}

	got, _ := Generate(f, MACDCrossover, Moderate)
	if got.Action != domain.Buy {
		t.Fatalf("action = %s, want BUY", got.Action)
	}
	if got.Strength != 3 {
		t.Errorf("strength = %d, want 3", got.Strength)
	}
	if got.Confidence != 71 {
		t.Errorf("confidence = %d, want 71", got.Confidence)
	}
	if len(got.Reasons) != 1 || !strings.Contains(got.Reasons[0], "bullish crossover") {
		t.Errorf("reasons = %v, want bullish crossover", got.Reasons)
	}
}

func TestMACDBearishCrossover(t *testing.T) {
	f := frameFromCloses(100, 99)
	f.MACD = []float64{0.4, -0.4}
	f.MACDSignal = []float64{0, 0}

	got, _ := Generate(f, MACDCrossover, Moderate)
	if got.Action != domain.Sell {
		t.Fatalf("action = %s, want SELL", got.Action)
	}
	if got.Strength != 4 {
		t.Errorf("strength = %d, want 4", got.Strength)
	}
}

func TestMACDBiasWithoutCrossover(t *testing.T) {
	f := frameFromCloses(100, 101)
	f.MACD = []float64{0.8, 0.9}
	f.MACDSignal = []float64{0, 0}

	got, _ := Generate(f, MACDCrossover, Moderate)
	if got.Action != domain.Buy || got.Strength != 6 || got.Confidence != 60 {
		t.Errorf("got %s/%d/%d, want BUY/6/60", got.Action, got.Strength, got.Confidence)
	}
}

func TestMACDNeutralInsideThreshold(t *testing.T) {
	f := frameFromCloses(100, 100)
	f.MACD = []float64{0.1, 0.2}
	f.MACDSignal = []float64{0, 0}

	got, _ := Generate(f, MACDCrossover, Moderate)
	if got.Action != domain.Hold {
		t.Errorf("action = %s, want HOLD", got.Action)
	}
}

func TestMovingAverageGoldenCross(t *testing.T) {
	f := frameFromCloses(100, 102)
	f.SMA20 = []float64{99, 101}
	f.SMA50 = []float64{100, 100}

	got, _ := Generate(f, MovingAverage, Moderate)
	if got.Action != domain.Buy || got.Strength != 8 || got.Confidence != 75 {
		t.Fatalf("got %s/%d/%d, want BUY/8/75", got.Action, got.Strength, got.Confidence)
	}
	if len(got.Reasons) != 1 || !strings.Contains(got.Reasons[0], "Golden cross") {
		t.Errorf("reasons = %v, want golden cross", got.Reasons)
	}
}

func TestMovingAverageDeathCross(t *testing.T) {
	f := frameFromCloses(100, 98)
	f.SMA20 = []float64{101, 99}
	f.SMA50 = []float64{100, 100}

	got, _ := Generate(f, MovingAverage, Moderate)
	if got.Action != domain.Sell || got.Strength != 8 {
		t.Errorf("got %s/%d, want SELL/8", got.Action, got.Strength)
	}
}

func TestMovingAverageTrendWithoutCross(t *testing.T) {
	f := frameFromCloses(100, 106)
	f.SMA20 = []float64{103, 104}
	f.SMA50 = []float64{100, 100}

	got, _ := Generate(f, MovingAverage, Moderate)
	if got.Action != domain.Buy || got.Strength != 6 || got.Confidence != 65 {
		t.Errorf("got %s/%d/%d, want BUY/6/65", got.Action, got.Strength, got.Confidence)
	}
}

func TestBollingerBreakouts(t *testing.T) {
	f := frameFromCloses(100, 94)
	f.BBUpper = column(2, 106)
	f.BBLower = column(2, 96)

	got, _ := Generate(f, Bollinger, Moderate)
	if got.Action != domain.Buy || got.Confidence != 70 {
		t.Fatalf("below lower band: got %s/%d, want BUY/70", got.Action, got.Confidence)
	}
	// (96-94)/96*100 = 2.08 -> strength 2
	if got.Strength != 2 {
		t.Errorf("strength = %d, want 2", got.Strength)
	}

	f.Bars[1].Close = 108
	got, _ = Generate(f, Bollinger, Moderate)
	if got.Action != domain.Sell {
		t.Errorf("above upper band: got %s, want SELL", got.Action)
	}
}

func TestMomentumRequiresVolumeConfirmation(t *testing.T) {
	f := frameFromCloses(100, 100, 100, 100, 100, 105)

	// 5% move but no volume-ratio column: ratio defaults to 1.0, rule holds.
	got, _ := Generate(f, Momentum, Moderate)
	if got.Action != domain.Hold {
		t.Fatalf("no volume data: got %s, want HOLD", got.Action)
	}

	f.VolumeRatio = column(6, 1.5)
	got, _ = Generate(f, Momentum, Moderate)
	if got.Action != domain.Buy || got.Strength != 7 || got.Confidence != 70 {
		t.Errorf("got %s/%d/%d, want BUY/7/70", got.Action, got.Strength, got.Confidence)
	}
}

func TestMomentumDownside(t *testing.T) {
	f := frameFromCloses(100, 100, 100, 100, 100, 95)
	f.VolumeRatio = column(6, 2)

	got, _ := Generate(f, Momentum, Moderate)
	if got.Action != domain.Sell {
		t.Errorf("got %s, want SELL", got.Action)
	}
}

func TestCompositeTwoBuyVotes(t *testing.T) {
	// RSI oversold plus a golden cross: two of four rules vote BUY at
	// weight 0.25 each, clearing the 0.4 bar.
	f := frameFromCloses(100, 102)
	f.RSI = column(2, 20)
	f.SMA20 = []float64{99, 101}
	f.SMA50 = []float64{100, 100}

	got, err := Generate(f, Composite, Moderate)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != domain.Buy {
		t.Fatalf("action = %s, want BUY", got.Action)
	}
	if got.Confidence != 50 {
		t.Errorf("confidence = %d, want 50", got.Confidence)
	}
	if got.Strength != 8 { // round(0.5*15)
		t.Errorf("strength = %d, want 8", got.Strength)
	}
	if len(got.Reasons) != 2 {
		t.Errorf("reasons = %v, want 2 agreeing reasons", got.Reasons)
	}
}

func TestCompositeSingleVoteIsMixed(t *testing.T) {
	f := frameFromCloses(100, 99)
	f.RSI = column(2, 20)

	got, _ := Generate(f, Composite, Moderate)
	if got.Action != domain.Hold {
		t.Fatalf("action = %s, want HOLD", got.Action)
	}
	if len(got.Reasons) != 1 || got.Reasons[0] != "Mixed signals from indicators" {
		t.Errorf("reasons = %v, want mixed-signals text", got.Reasons)
	}
}

func TestCompositeNoVotes(t *testing.T) {
	f := frameFromCloses(100, 100)

	got, _ := Generate(f, Composite, Moderate)
	if got.Action != domain.Hold || got.Strength != 5 || got.Confidence != 50 {
		t.Fatalf("got %s/%d/%d, want HOLD/5/50", got.Action, got.Strength, got.Confidence)
	}
	if len(got.Reasons) != 1 || got.Reasons[0] != "No clear signal from technical indicators" {
		t.Errorf("reasons = %v, want no-clear-signal text", got.Reasons)
	}
}

func TestCompositeOpposingVotesCancel(t *testing.T) {
	// RSI votes BUY, moving averages vote SELL: 0.25 each, neither side
	// clears 0.4.
	f := frameFromCloses(100, 98)
	f.RSI = column(2, 20)
	f.SMA20 = []float64{101, 99}
	f.SMA50 = []float64{100, 100}

	got, _ := Generate(f, Composite, Moderate)
	if got.Action != domain.Hold {
		t.Errorf("action = %s, want HOLD", got.Action)
	}
}
