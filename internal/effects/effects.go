package effects

// DefaultZoomFactor is the extra scale a scene reaches at its last instant.
const DefaultZoomFactor = 0.05

// MinDuration bounds the divisor of the zoom ramp. It never changes the
// duration a scene is shown for.
const MinDuration = 0.01

// Effect animates a scene over its local time.
type Effect interface {
	// ScaleAt returns the isotropic, center-anchored scale at local time t of a
	// scene lasting duration seconds.
	ScaleAt(t, duration float64) float64
}

// KenBurns is a slow linear zoom-in.
type KenBurns struct {
	ZoomFactor float64
}

// NewKenBurns returns the zoom used for every reel scene.
func NewKenBurns() *KenBurns {
	return &KenBurns{ZoomFactor: DefaultZoomFactor}
}

func (k *KenBurns) ScaleAt(t, duration float64) float64 {
	return ScaleAt(t, duration, k.ZoomFactor)
}

// ScaleAt computes 1 + zoomFactor * t/duration with t clamped to [0, duration].
func ScaleAt(t, duration, zoomFactor float64) float64 {
	if duration < 0 {
		duration = 0
	}
	if t < 0 {
		t = 0
	}
	if t > duration {
		t = duration
	}
	d := duration
	if d < MinDuration {
		d = MinDuration
	}
	return 1.0 + zoomFactor*(t/d)
}

// Static keeps every frame at scale 1.
type Static struct{}

func (Static) ScaleAt(t, duration float64) float64 { return 1.0 }
