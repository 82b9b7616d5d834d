package audio

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestGainMultiplier(t *testing.T) {
	if GainMultiplier(0) != 1.0 {
		t.Errorf("0 dB = %v, want exactly 1", GainMultiplier(0))
	}
	if got := GainMultiplier(-20); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("-20 dB = %v, want 0.1", got)
	}

	prev := GainMultiplier(12)
	for db := 11.0; db >= -60; db-- {
		g := GainMultiplier(db)
		if g >= prev {
			t.Fatalf("multiplier not decreasing at %v dB: %v >= %v", db, g, prev)
		}
		prev = g
	}
}

func fixedProbe(d float64) Prober {
	return func(context.Context, string) (float64, error) { return d, nil }
}

func musicFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "music.mp3")
	if err := os.WriteFile(p, []byte("not really audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMix(t *testing.T) {
	path := musicFile(t)

	tests := []struct {
		name     string
		source   float64
		target   float64
		duration float64
		tail     float64
	}{
		{"short music leaves silence", 2, 10, 2, 8},
		{"long music is trimmed", 30, 10, 10, 0},
		{"exact fit", 10, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mixer{Probe: fixedProbe(tt.source)}
			tr, err := m.Mix(context.Background(), path, -8, tt.target)
			if err != nil {
				t.Fatal(err)
			}
			if tr.Duration != tt.duration {
				t.Errorf("duration %v, want %v", tr.Duration, tt.duration)
			}
			if tr.SilenceTail != tt.tail {
				t.Errorf("silence tail %v, want %v", tr.SilenceTail, tt.tail)
			}
			if math.Abs(tr.Gain-GainMultiplier(-8)) > 1e-12 {
				t.Errorf("gain %v", tr.Gain)
			}
		})
	}
}

func TestMixAbsent(t *testing.T) {
	m := &Mixer{Probe: func(context.Context, string) (float64, error) {
		t.Fatal("probe should not run")
		return 0, nil
	}}

	for _, path := range []string{"", filepath.Join(t.TempDir(), "nope.mp3")} {
		tr, err := m.Mix(context.Background(), path, 0, 5)
		if err != nil || tr != nil {
			t.Errorf("Mix(%q) = %v, %v; want nil, nil", path, tr, err)
		}
	}
}

func TestMixProbeError(t *testing.T) {
	m := &Mixer{Probe: func(context.Context, string) (float64, error) {
		return 0, errors.New("bad file")
	}}
	if _, err := m.Mix(context.Background(), musicFile(t), 0, 5); err == nil {
		t.Fatal("expected probe error")
	}
}

func TestParseProbe(t *testing.T) {
	d, err := parseProbe(`{"streams":[],"format":{"filename":"a.mp3","duration":"2.500000"}}`)
	if err != nil {
		t.Fatal(err)
	}
	if d != 2.5 {
		t.Errorf("got %v, want 2.5", d)
	}
	if _, err := parseProbe(`{"format":{}}`); err == nil {
		t.Error("missing duration should fail")
	}
}
