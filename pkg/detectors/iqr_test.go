package detectors

import (
	"testing"
)

func TestIQROutliersFlagsSpike(t *testing.T) {
	values := []float64{4.9, 5.1, 5.0, 4.8, 5.2, 5.0, 4.95, 100}

	mask := IQROutliers(values, 1.5)
	if len(mask) != len(values) {
		t.Fatalf("Mask length %d, want %d", len(mask), len(values))
	}

	for i := 0; i < len(values)-1; i++ {
		if mask[i] {
			t.Errorf("Value %f at index %d flagged as outlier", values[i], i)
		}
	}
	if !mask[len(values)-1] {
		t.Error("Spike value 100 not flagged as outlier")
	}
}

func TestIQROutliersUniformSeries(t *testing.T) {
	values := []float64{3, 3, 3, 3, 3, 3}

	mask := IQROutliers(values, 1.5)
	for i, flagged := range mask {
		if flagged {
			t.Errorf("Index %d flagged in a uniform series", i)
		}
	}
}

func TestIQROutliersFenceMultiplier(t *testing.T) {
	// Q1 = 2, Q3 = 4, IQR = 2. The value 8 sits outside Q3 + 1.5*IQR = 7 but
	// inside Q3 + 3*IQR = 10.
	values := []float64{1, 2, 2, 3, 3, 4, 4, 5, 8}

	tight := IQROutliers(values, 1.5)
	if !tight[len(values)-1] {
		t.Error("Value 8 not flagged with fence multiplier 1.5")
	}

	loose := IQROutliers(values, 3)
	if loose[len(values)-1] {
		t.Error("Value 8 flagged with fence multiplier 3")
	}
}

func TestIQROutliersDefaultMultiplier(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 4, 4, 5, 8}

	explicit := IQROutliers(values, DefaultFenceMultiplier)
	fallback := IQROutliers(values, 0)
	for i := range explicit {
		if explicit[i] != fallback[i] {
			t.Fatalf("Default fence behavior differs at index %d", i)
		}
	}
}

func TestIndices(t *testing.T) {
	mask := []bool{false, true, false, false, true, true}

	got := Indices(mask)
	want := []int{1, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Indices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Indices[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if got := Indices(nil); got != nil {
		t.Errorf("Indices(nil) = %v, want nil", got)
	}
}
