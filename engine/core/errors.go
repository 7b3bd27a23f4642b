package core

import (
	"errors"
	"fmt"
)

var (
	// asset cache
	ErrLoadFailure       = errors.New("asset load failed")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrAssetTypeMismatch = errors.New("asset type mismatch")
	ErrIDCollision       = errors.New("resource id collision")
	ErrUnknownKind       = errors.New("no loader registered for asset kind")

	// system pipeline
	ErrDuplicateSystem = errors.New("system already registered")
	ErrMissingSystem   = errors.New("system not registered")

	// renderer
	ErrUnsupportedBackend = errors.New("unsupported renderer backend")
)

// LoadError is returned by the asset manager when a loader could not produce
// a payload. It always matches ErrLoadFailure.
type LoadError struct {
	Kind string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s asset '%s': %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailure
}
