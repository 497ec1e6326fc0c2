/*
Package game
File: errors.go
Description:
    Failure kinds raised by the workshop. Every one of them is handled at the
    boundary nearest its origin: the ledger returns them, the API turns them
    into HTTP status codes, and the estimator/loader turn them into log lines.
*/

package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientVolume means the candidate would overflow the container's free volume.
	ErrInsufficientVolume = errors.New("insufficient volume")
	// ErrNotFound means the part is not housed in the container.
	ErrNotFound = errors.New("part not found in container")
	// ErrNotEquippable means the part lacks the equipment capability tag.
	ErrNotEquippable = errors.New("part is not equippable")
	// ErrTechLocked means the part's tech node has not been researched.
	ErrTechLocked = errors.New("part is technology-locked")
	// ErrGeometryScanFailure means the mesh traversal could not complete.
	ErrGeometryScanFailure = errors.New("geometry scan failure")
	// ErrMalformedModuleState means persisted fields did not deserialize to a usable value.
	ErrMalformedModuleState = errors.New("malformed module state")
	// ErrUnknownPart means a part key is not present in the catalog.
	ErrUnknownPart = errors.New("unknown part")
	// ErrAlreadyHoused means the exact same part instance is already in the container.
	ErrAlreadyHoused = errors.New("part is already housed")
	// ErrNotContainer means the part definition has no internal volume.
	ErrNotContainer = errors.New("part is not a container")
)

// InsufficientVolumeError reports the shortfall of a rejected Equip.
type InsufficientVolumeError struct {
	Part      string  // Catalog key of the rejected candidate
	Required  float64 // Candidate volume (liters)
	Available float64 // Free volume at the time of the request (liters)
}

func (e *InsufficientVolumeError) Error() string {
	return fmt.Sprintf("insufficient volume for %s: requires %.1f L, %.1f L available", e.Part, e.Required, e.Available)
}

func (e *InsufficientVolumeError) Unwrap() error {
	return ErrInsufficientVolume
}
