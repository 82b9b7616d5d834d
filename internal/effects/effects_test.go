package effects

import (
	"math"
	"testing"
)

func TestScaleAt(t *testing.T) {
	tests := []struct {
		name     string
		t, dur   float64
		expected float64
	}{
		{"start", 0, 4, 1.0},
		{"middle", 2, 4, 1.025},
		{"end", 4, 4, 1.05},
		{"before start", -1, 4, 1.0},
		{"after end", 9, 4, 1.05},
		{"tiny duration end", 0.001, 0.001, 1.0 + 0.05*0.1},
		{"zero duration", 0, 0, 1.0},
	}

	kb := NewKenBurns()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kb.ScaleAt(tt.t, tt.dur)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ScaleAt(%v, %v) = %v, want %v", tt.t, tt.dur, got, tt.expected)
			}
		})
	}
}

func TestScaleAtMonotonic(t *testing.T) {
	prev := 0.0
	for i := 0; i <= 120; i++ {
		s := ScaleAt(float64(i)/30, 4, DefaultZoomFactor)
		if s < prev {
			t.Fatalf("scale decreased at frame %d: %v < %v", i, s, prev)
		}
		if s < 1 || s > 1+DefaultZoomFactor {
			t.Fatalf("scale %v outside [1, 1.05]", s)
		}
		prev = s
	}
}

func TestStatic(t *testing.T) {
	var e Effect = Static{}
	if e.ScaleAt(3, 4) != 1 {
		t.Error("Static must not zoom")
	}
}
