// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package geo obtains the device location once so map queries can be biased
// toward it.
//
// A Locator produces coordinates; Request turns a single attempt into a Fix
// that carries either coordinates or an advisory; Slot stores the first Fix
// for the lifetime of a process or browser connection.
package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Advisory is shown when no location could be obtained. Map answers still
// work, only less precisely.
const Advisory = "Could not get your location. Map-related queries may be less accurate. Please enable location services in your browser."

// TerminalAdvisory is the terminal wording of Advisory.
const TerminalAdvisory = "Could not get your location. Map-related queries may be less accurate. Set [location] in ~/.robo/config.toml to enable it."

var (
	// ErrDisabled is returned by a locator that never provides a location.
	ErrDisabled = errors.New("location disabled")

	// ErrInvalidCoordinates is returned for out-of-range values.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate checks that both values are within range.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, c.Longitude)
	}
	return nil
}

// String formats the pair for status lines.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// Locator produces the current device coordinates.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (Coordinates, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// Static always reports the same coordinates.
type Static Coordinates

// Locate returns the fixed coordinates.
func (s Static) Locate(context.Context) (Coordinates, error) {
	c := Coordinates(s)
	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

// Disabled never provides a location.
type Disabled struct{}

// Locate always fails with ErrDisabled.
func (Disabled) Locate(context.Context) (Coordinates, error) {
	return Coordinates{}, ErrDisabled
}

// =============================================================================
// FIX
// =============================================================================

// Fix is the outcome of one location attempt. Exactly one of Coords and
// Advisory is set.
type Fix struct {
	Coords   *Coordinates
	Advisory string
	Err      error
}

// OK reports whether the attempt produced coordinates.
func (f Fix) OK() bool {
	return f.Coords != nil
}

// Success builds a fix carrying coordinates.
func Success(c Coordinates) Fix {
	return Fix{Coords: &c}
}

// Failure builds a fix carrying the given advisory.
func Failure(advisory string, err error) Fix {
	return Fix{Advisory: advisory, Err: err}
}

// Request performs a single attempt. It never retries and never blocks past
// ctx. Failures of any kind map to the browser advisory text.
func Request(ctx context.Context, loc Locator) Fix {
	return RequestWithAdvisory(ctx, loc, Advisory)
}

// RequestWithAdvisory is Request with caller-chosen advisory wording.
func RequestWithAdvisory(ctx context.Context, loc Locator, advisory string) Fix {
	if loc == nil {
		return Failure(advisory, ErrDisabled)
	}
	c, err := loc.Locate(ctx)
	if err == nil {
		err = c.Validate()
	}
	if err != nil {
		return Failure(advisory, err)
	}
	return Success(c)
}

// =============================================================================
// SLOT
// =============================================================================

// Slot holds the location state. The first resolved Fix wins; later ones are
// ignored. It is safe for concurrent use.
type Slot struct {
	mu       sync.RWMutex
	resolved bool
	fix      Fix
}

// Resolve records f if no outcome has been recorded yet. It reports whether
// f was accepted.
func (s *Slot) Resolve(f Fix) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return false
	}
	s.resolved = true
	s.fix = f
	return true
}

// Coordinates returns the held coordinates, if any.
func (s *Slot) Coordinates() (Coordinates, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fix.Coords == nil {
		return Coordinates{}, false
	}
	return *s.fix.Coords, true
}

// Resolved reports whether an outcome has arrived.
func (s *Slot) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// Fix returns the recorded outcome.
func (s *Slot) Fix() Fix {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fix
}
