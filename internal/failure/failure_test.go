package failure

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func TestKindThroughWrapping(t *testing.T) {
	base := New(AssetNotFound, 2, "open %s", "missing.png")

	tests := []struct {
		name string
		err  error
	}{
		{"direct", base},
		{"pkg/errors", errors.Wrap(base, "build scene")},
		{"fmt", fmt.Errorf("render: %w", base)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != AssetNotFound {
				t.Errorf("KindOf = %v, want %v", got, AssetNotFound)
			}
			if got := SceneOf(tt.err); got != 2 {
				t.Errorf("SceneOf = %d, want 2", got)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(InvalidScene, 0, "duration must be > 0, got %v", -1.0)
	want := "invalid scene: scene 0: duration must be > 0, got -1"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	err = New(InvalidSpec, NoScene, "no frames")
	if err.Error() != "invalid spec: no frames" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(EncodingFailure, NoScene, nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if KindOf(errors.New("plain")) != Unknown {
		t.Error("plain errors should be Unknown")
	}
	if SceneOf(errors.New("plain")) != NoScene {
		t.Error("plain errors should carry no scene")
	}
}
