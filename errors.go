// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import "errors"

// Stroke and surface protocol errors.
var (
	// ErrStrokeSealed is returned when a point is added to a finished stroke.
	ErrStrokeSealed = errors.New("freehand: stroke is sealed")

	// ErrStrokeInProgress is returned by BeginStroke while a stroke is open.
	ErrStrokeInProgress = errors.New("freehand: stroke already in progress")

	// ErrNoActiveStroke is returned by ExtendStroke and EndStroke when no
	// stroke has been begun.
	ErrNoActiveStroke = errors.New("freehand: no active stroke")

	// ErrNoPoints is returned when a stroke is built from an empty point list.
	ErrNoPoints = errors.New("freehand: stroke has no points")

	// ErrInvalidStyle is returned for a style with out of range values.
	ErrInvalidStyle = errors.New("freehand: invalid stroke style")

	// ErrInvalidSize is returned for a non-positive surface or image size.
	ErrInvalidSize = errors.New("freehand: invalid size")
)

// Persistence errors.
var (
	// ErrInvalidRecord is returned when a persisted stroke is malformed.
	ErrInvalidRecord = errors.New("freehand: invalid persisted stroke")

	// ErrLoadSuperseded is delivered to a load callback when a later load or
	// Clear replaced its result before adoption.
	ErrLoadSuperseded = errors.New("freehand: load superseded")
)

// Rendering errors.
var (
	// ErrNoFrame is returned when drawing is attempted outside
	// BeginFrame/EndFrame.
	ErrNoFrame = errors.New("freehand: no frame in progress")

	// ErrShaderCompile is returned when a shader program fails to compile
	// or link.
	ErrShaderCompile = errors.New("freehand: shader compile failed")

	// ErrDeviceDestroyed is returned by a device used after Destroy.
	ErrDeviceDestroyed = errors.New("freehand: device destroyed")

	errNoShader = errors.New("freehand: no shader")
)
