// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import "fmt"

// PersistentStroke is the storable form of a Stroke. The host chooses the
// encoding; the JSON tags support encoding/json directly.
type PersistentStroke struct {
	Points    []Point `json:"points"`
	Color     RGBA    `json:"color"`
	Opacity   float64 `json:"opacity"`
	Width     float64 `json:"width"`
	Cap       LineCap `json:"cap,omitempty"`
	JoinAngle float64 `json:"joinAngle,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`
}

// PersistentDrawing is an ordered list of persisted strokes, bottom first.
type PersistentDrawing struct {
	Strokes []PersistentStroke `json:"strokes"`
}

// Style returns the record's style with unset join angle and tolerance
// defaulted.
func (p PersistentStroke) Style() Style {
	return Style{
		Color:     p.Color,
		Opacity:   p.Opacity,
		Width:     p.Width,
		Cap:       p.Cap,
		JoinAngle: p.JoinAngle,
		Tolerance: p.Tolerance,
	}.withDefaults()
}

// Validate reports whether the record can be rebuilt into a stroke.
// Errors wrap ErrInvalidRecord.
func (p PersistentStroke) Validate() error {
	if len(p.Points) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrNoPoints)
	}
	for i, pt := range p.Points {
		if !pt.IsFinite() {
			return fmt.Errorf("%w: point %d is not finite", ErrInvalidRecord, i)
		}
	}
	if err := p.Style().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// Persistent returns the storable form of s.
func (s *Stroke) Persistent() PersistentStroke {
	return PersistentStroke{
		Points:    s.InputPoints(),
		Color:     s.style.Color,
		Opacity:   s.style.Opacity,
		Width:     s.style.Width,
		Cap:       s.style.Cap,
		JoinAngle: s.style.JoinAngle,
		Tolerance: s.style.Tolerance,
	}
}

// StrokeFromPersistent rebuilds a sealed stroke from rec. The result has the
// same mesh as the live stroke rec was taken from. It makes no GPU calls.
func StrokeFromPersistent(rec PersistentStroke, shader PathShader) (*Stroke, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	n := len(rec.Points)
	s, err := NewStrokeFromPoints(shader, rec.Points[:max(1, n-1)], rec.Style())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if n == 1 {
		s.seal()
		return s, nil
	}
	if _, err := s.FinishWithPoint(rec.Points[n-1]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return s, nil
}

// Persistent returns the storable form of every completed stroke.
func (s *Surface) Persistent() PersistentDrawing {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := PersistentDrawing{Strokes: make([]PersistentStroke, 0, len(s.strokes))}
	for _, st := range s.strokes {
		d.Strokes = append(d.Strokes, st.Persistent())
	}
	return d
}
