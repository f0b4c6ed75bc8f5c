// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

// Delegate receives drawing notifications from a Surface. Hooks run on the
// goroutine that called the surface method, after the surface lock is
// released, so they may call back into the surface.
type Delegate interface {
	// WillDraw is called when a stroke begins.
	WillDraw(s *Surface)

	// DidDrawStroke is called when a stroke ends, with the completed stroke.
	DidDrawStroke(s *Surface, stroke *Stroke)
}

// DelegateFuncs adapts optional functions to Delegate. Nil fields are
// no-ops.
type DelegateFuncs struct {
	OnWillDraw      func(s *Surface)
	OnDidDrawStroke func(s *Surface, stroke *Stroke)
}

// WillDraw implements Delegate.
func (d DelegateFuncs) WillDraw(s *Surface) {
	if d.OnWillDraw != nil {
		d.OnWillDraw(s)
	}
}

// DidDrawStroke implements Delegate.
func (d DelegateFuncs) DidDrawStroke(s *Surface, stroke *Stroke) {
	if d.OnDidDrawStroke != nil {
		d.OnDidDrawStroke(s, stroke)
	}
}

// Dispatcher runs f on the goroutine that owns the surface's render state.
// Hosts with a render loop pass a function that queues f onto it.
type Dispatcher func(f func())
