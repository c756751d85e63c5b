package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks invalid options; nothing has been sent to the engine
	ErrConfig           = errors.New("invalid configuration")
	ErrNoCameras        = errors.New("no cameras added")
	ErrNoAlignment      = errors.New("no cameras aligned")
	ErrGCPMissing       = errors.New("gcp file not found")
	ErrMarkerImport     = errors.New("marker import failed")
	ErrMergeProjections = errors.New("merged chunk has no marker projections")
	ErrTooFewRoutes     = errors.New("at least two routes are required")
)

// StageError reports the stage at which a route stopped
type StageError struct {
	Stage Stage
	Route string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("route %s: %s: %v", e.Route, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
