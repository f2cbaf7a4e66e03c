package energy_test

import (
	"math"
	"testing"

	"github.com/farcloser/voxsense/internal/feature/energy"
)

func TestRMS(t *testing.T) {
	t.Parallel()

	constant := make([]float64, 2048)
	for i := range constant {
		constant[i] = 0.5
	}

	square := make([]float64, 2048)
	for i := range square {
		square[i] = 1
		if i%2 == 1 {
			square[i] = -1
		}
	}

	got := energy.RMS([][]float64{constant, square, make([]float64, 16), nil})

	want := []float64{0.5, 1, 0, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("frame %d: RMS = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestZeroCrossingRate(t *testing.T) {
	t.Parallel()

	alternating := make([]float64, 100)
	for i := range alternating {
		alternating[i] = 0.3
		if i%2 == 1 {
			alternating[i] = -0.3
		}
	}

	// Zero and near zero count as positive, so only the two sign changes around -1 cross.
	withZeros := []float64{0, 1, 0, -1, 0, 1e-12, -1e-12, 1}

	got := energy.ZeroCrossingRate([][]float64{alternating, withZeros, make([]float64, 10), {1}}, 22050)

	if want := 99.0 / 100; got[0] != want {
		t.Errorf("alternating frame: %v, want %v", got[0], want)
	}

	if want := 2.0 / 8; got[1] != want {
		t.Errorf("frame with zeros: %v, want %v", got[1], want)
	}

	if got[2] != 0 || got[3] != 0 {
		t.Errorf("silent or single sample frames: %v %v", got[2], got[3])
	}
}
