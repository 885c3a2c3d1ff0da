package annotate

import (
	"math"
	"testing"
)

func TestTopN_Basic(t *testing.T) {
	values := []float64{5, 1, 9, 3, 7}
	highs, lows := TopN(values, 2)

	if len(highs) != 2 || len(lows) != 2 {
		t.Fatalf("Expected 2 highs and 2 lows, got %d/%d", len(highs), len(lows))
	}
	if highs[0].Value != 9 || highs[0].Position != 2 {
		t.Errorf("Top high wrong: %+v", highs[0])
	}
	if lows[0].Value != 1 || lows[0].Position != 1 {
		t.Errorf("Top low wrong: %+v", lows[0])
	}
}

func TestTopN_ZeroIsEmptyNotError(t *testing.T) {
	highs, lows := TopN([]float64{1, 2, 3}, 0)
	if highs != nil || lows != nil {
		t.Error("N=0 must yield empty sets")
	}
}

func TestTopN_TiesStableByPosition(t *testing.T) {
	values := []float64{4, 4, 4}
	highs, _ := TopN(values, 2)
	if highs[0].Position != 0 || highs[1].Position != 1 {
		t.Errorf("Ties must keep encounter order: %+v", highs)
	}
}

func TestTopN_IgnoresNaNAndClampsN(t *testing.T) {
	values := []float64{math.NaN(), 2, math.NaN()}
	highs, lows := TopN(values, 5)
	if len(highs) != 1 || len(lows) != 1 {
		t.Fatalf("Expected clamp to the 1 valid value, got %d/%d", len(highs), len(lows))
	}
	if highs[0].Position != 1 {
		t.Errorf("Expected position 1, got %d", highs[0].Position)
	}
}

func TestSmoothingWindow_Clamps(t *testing.T) {
	cases := []struct{ n, want int }{
		{10, 3},   // 10/20 = 0 -> floor 3
		{100, 5},  // 100/20 = 5
		{744, 24}, // 744/20 = 37 -> cap 24
	}
	for _, c := range cases {
		if got := SmoothingWindow(c.n); got != c.want {
			t.Errorf("SmoothingWindow(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestMovingAverage_MinPeriodsOne(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6}, 3)
	want := []float64{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MovingAverage[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestMovingAverage_SkipsNaN(t *testing.T) {
	got := MovingAverage([]float64{2, math.NaN(), 6}, 3)
	if got[1] != 2 {
		t.Errorf("Expected NaN skipped, got %f", got[1])
	}
	if got[2] != 4 {
		t.Errorf("Expected mean of {2,6}=4, got %f", got[2])
	}
}

func TestClampRollingWindow(t *testing.T) {
	cases := []struct{ window, n, want int }{
		{1, 100, 3},     // floor
		{24, 100, 24},   // untouched
		{500, 1000, 168}, // 7-day cap
		{100, 50, 50},   // series shorter than cap
	}
	for _, c := range cases {
		if got := ClampRollingWindow(c.window, c.n); got != c.want {
			t.Errorf("ClampRollingWindow(%d, %d) = %d, want %d", c.window, c.n, got, c.want)
		}
	}
}

func TestRolling_AbsSum(t *testing.T) {
	// abs_sum is sum of absolute values, not abs of the sum.
	got, err := Rolling([]float64{-5, 5, -3}, 3, RollAbsSum)
	if err != nil {
		t.Fatalf("Rolling failed: %v", err)
	}
	if got[2] != 13 {
		t.Errorf("abs_sum over [-5,5,-3] = %f, want 13", got[2])
	}
}

func TestRolling_MeanMinPeriodsOne(t *testing.T) {
	got, err := Rolling([]float64{10, 20, 30}, 3, RollMean)
	if err != nil {
		t.Fatalf("Rolling failed: %v", err)
	}
	want := []float64{10, 15, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Rolling[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestRolling_StdNeedsTwoValues(t *testing.T) {
	got, err := Rolling([]float64{10, 20}, 2, RollStd)
	if err != nil {
		t.Fatalf("Rolling failed: %v", err)
	}
	if !math.IsNaN(got[0]) {
		t.Errorf("std over a single value must be NaN, got %f", got[0])
	}
	if math.Abs(got[1]-math.Sqrt(50)) > 1e-9 {
		t.Errorf("std over {10,20} = %f, want %f", got[1], math.Sqrt(50))
	}
}

func TestRolling_UnknownStat(t *testing.T) {
	if _, err := Rolling([]float64{1}, 3, RollStat("median")); err == nil {
		t.Fatal("Expected error for unknown aggregate")
	}
}

func TestRolling_AllNaNWindow(t *testing.T) {
	got, err := Rolling([]float64{math.NaN(), math.NaN()}, 2, RollSum)
	if err != nil {
		t.Fatalf("Rolling failed: %v", err)
	}
	for i := range got {
		if !math.IsNaN(got[i]) {
			t.Errorf("Window with no valid values must be NaN at %d", i)
		}
	}
}
