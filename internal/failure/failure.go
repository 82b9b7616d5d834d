// Package failure defines the error kinds a render can end with.
//
// Every user-visible failure carries a Kind and, where one applies, the
// zero-based index of the scene that caused it. Callers classify errors with
// KindOf and SceneOf, which look through any wrapping done with
// github.com/pkg/errors or fmt.Errorf("%w").
package failure

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a render failure.
type Kind int

const (
	Unknown Kind = iota
	// InvalidSpec: the scene list is missing or empty, or a render knob is unusable.
	InvalidSpec
	// InvalidScene: a scene has a non-positive duration.
	InvalidScene
	// AssetNotFound: a scene image cannot be located or decoded.
	AssetNotFound
	// EncodingFailure: the codec is unavailable or the container write failed.
	EncodingFailure
	// Canceled: the render context was canceled.
	Canceled
)

func (k Kind) String() string {
	switch k {
	case InvalidSpec:
		return "invalid spec"
	case InvalidScene:
		return "invalid scene"
	case AssetNotFound:
		return "asset not found"
	case EncodingFailure:
		return "encoding failure"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// NoScene marks failures that are not tied to a single scene.
const NoScene = -1

// Error is a classified render failure.
type Error struct {
	Kind  Kind
	Scene int
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Scene >= 0 {
		msg = fmt.Sprintf("%s: scene %d", msg, e.Scene)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified failure with a formatted message.
func New(kind Kind, scene int, format string, args ...interface{}) error {
	return &Error{Kind: kind, Scene: scene, Err: errors.Errorf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, scene int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Scene: scene, Err: err}
}

// KindOf returns the Kind of the outermost classified failure in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// SceneOf returns the scene index recorded in err, or NoScene.
func SceneOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Scene
	}
	return NoScene
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
