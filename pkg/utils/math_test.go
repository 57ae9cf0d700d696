package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	in := []float32{3, 4}
	out := NormalizeL2(in)
	if in[0] != 3 || in[1] != 4 {
		t.Errorf("input modified: %v", in)
	}
	if math.Abs(float64(out[0])-0.6) > 1e-6 || math.Abs(float64(out[1])-0.8) > 1e-6 {
		t.Errorf("NormalizeL2 = %v", out)
	}

	zero := NormalizeL2([]float32{0, 0, 0})
	if len(zero) != 3 || zero[0] != 0 {
		t.Errorf("zero vector = %v", zero)
	}
	if got := NormalizeL2(nil); len(got) != 0 {
		t.Errorf("nil = %v", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{87.654, 87.65},
		{87.655001, 87.66},
		{0.1000001 * 100, 10},
		{100, 100},
		{0.125, 0.12},
		{0.375, 0.38},
		{-0.125, -0.12},
		{2.675, 2.67},
	}
	for _, tt := range tests {
		if got := Round(tt.x, 2); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Round(%v, 2) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
