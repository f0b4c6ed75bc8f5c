// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
)

// Surface is a freehand drawing surface: completed strokes in z-order and
// at most one active stroke. Undo removes completed strokes from the top.
//
// The surface owns its Device, PathShader and background ImageQuad.
// Its methods are serialized by an internal mutex; GPU work happens on the
// calling goroutine, which for a GPU device must be the render goroutine.
type Surface struct {
	mu sync.Mutex

	width, height float64

	device     Device
	pathShader PathShader
	background *ImageQuad
	clearColor RGBA

	style    Style
	delegate Delegate
	dispatch Dispatcher

	strokes []*Stroke
	active  *Stroke

	// retired strokes were replaced off the render goroutine; their GPU
	// state is released by the next render or Destroy.
	retired []*Stroke

	// loadSeq identifies the most recent load; Clear and Destroy bump it so
	// pending loads are superseded.
	loadSeq   uint64
	destroyed bool
}

// NewSurface creates a surface of width×height surface units.
//
// Shader compilation happens here; a compile failure is returned and no
// surface is created.
func NewSurface(width, height float64, opts ...SurfaceOption) (*Surface, error) {
	if !finitePositive(width) || !finitePositive(height) {
		return nil, fmt.Errorf("%w: surface %vx%v", ErrInvalidSize, width, height)
	}
	o := defaultSurfaceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	style := o.style.withDefaults()
	if err := style.Validate(); err != nil {
		return nil, err
	}
	if o.device == nil {
		o.device = NewSoftwareDevice()
	}

	ps, err := o.device.NewPathShader()
	if err != nil {
		o.device.Destroy()
		return nil, fmt.Errorf("freehand: create path shader: %w", err)
	}

	s := &Surface{
		width:      width,
		height:     height,
		device:     o.device,
		pathShader: ps,
		clearColor: o.background,
		style:      style,
		delegate:   o.delegate,
		dispatch:   o.dispatch,
	}
	ps.SetProjection(Ortho(width, height))

	if o.image != nil {
		if err := s.setBackgroundImageLocked(o.image); err != nil {
			s.Destroy()
			return nil, err
		}
	}

	Logger().Info("freehand: surface created", "width", width, "height", height)
	return s, nil
}

// Size returns the surface size.
func (s *Surface) Size() (width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Style returns the style that the next stroke will begin with.
func (s *Surface) Style() Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// SetStyle replaces the style for future strokes.
func (s *Surface) SetStyle(style Style) error {
	style = style.withDefaults()
	if err := style.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.style = style
	s.mu.Unlock()
	return nil
}

// SetLineWidth sets the width of future strokes.
func (s *Surface) SetLineWidth(w float64) error {
	st := s.Style()
	st.Width = w
	return s.SetStyle(st)
}

// SetLineColor sets the color of future strokes.
func (s *Surface) SetLineColor(c RGBA) error {
	st := s.Style()
	st.Color = c
	return s.SetStyle(st)
}

// SetLineOpacity sets the opacity of future strokes.
func (s *Surface) SetLineOpacity(o float64) error {
	st := s.Style()
	st.Opacity = o
	return s.SetStyle(st)
}

// SetLineCap sets the cap of future strokes.
func (s *Surface) SetLineCap(c LineCap) error {
	st := s.Style()
	st.Cap = c
	return s.SetStyle(st)
}

// BeginStroke starts a stroke at p with the current style.
// It fails with ErrStrokeInProgress when a stroke is already open.
func (s *Surface) BeginStroke(p Point) error {
	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return ErrStrokeInProgress
	}
	st, err := NewStroke(s.pathShader, p, s.style)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.active = st
	d := s.delegate
	s.mu.Unlock()

	if d != nil {
		d.WillDraw(s)
	}
	return nil
}

// ExtendStroke appends p to the active stroke.
// It fails with ErrNoActiveStroke when no stroke is open.
func (s *Surface) ExtendStroke(p Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoActiveStroke
	}
	_, err := s.active.AppendPoint(p)
	return err
}

// EndStroke finishes the active stroke at p and moves it to the completed
// strokes, where Undo can remove it.
func (s *Surface) EndStroke(p Point) (*Stroke, error) {
	s.mu.Lock()
	st := s.active
	if st == nil {
		s.mu.Unlock()
		return nil, ErrNoActiveStroke
	}
	if _, err := st.FinishWithPoint(p); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.active = nil
	s.strokes = append(s.strokes, st)
	d := s.delegate
	s.mu.Unlock()

	if d != nil {
		d.DidDrawStroke(s, st)
	}
	return st, nil
}

// CancelStroke discards the active stroke, if any. Completed strokes are
// untouched.
func (s *Surface) CancelStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.release()
		s.active = nil
	}
}

// CanUndo reports whether there is a completed stroke to remove.
func (s *Surface) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.strokes) > 0
}

// Undo removes the most recently completed stroke, loaded strokes
// included. It does nothing when there are no completed strokes.
func (s *Surface) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.strokes)
	if n == 0 {
		return
	}
	st := s.strokes[n-1]
	s.strokes[n-1] = nil
	s.strokes = s.strokes[:n-1]
	st.release()
}

// Clear removes every stroke, the active one included. Pending loads are
// superseded.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.loadSeq++
}

func (s *Surface) clearLocked() {
	for _, st := range s.strokes {
		st.release()
	}
	if s.active != nil {
		s.active.release()
	}
	s.strokes = nil
	s.active = nil
}

// releaseRetiredLocked frees the GPU state of strokes replaced by a load.
// It must run on the render goroutine.
func (s *Surface) releaseRetiredLocked() {
	for i, st := range s.retired {
		st.release()
		s.retired[i] = nil
	}
	s.retired = s.retired[:0]
}

// Strokes returns the completed strokes in z-order.
func (s *Surface) Strokes() []*Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Stroke, len(s.strokes))
	copy(out, s.strokes)
	return out
}

// ActiveStroke returns the open stroke, or nil.
func (s *Surface) ActiveStroke() *Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// StrokeCount returns the number of completed strokes.
func (s *Surface) StrokeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.strokes)
}

// Bounds returns the union of every stroke's bounding rectangle and whether
// there was any stroke.
func (s *Surface) Bounds() (Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var r Rect
	ok := false
	visit := func(st *Stroke) {
		if !ok {
			r, ok = st.BoundingRect(), true
			return
		}
		r = r.Union(st.BoundingRect())
	}
	for _, st := range s.strokes {
		visit(st)
	}
	if s.active != nil {
		visit(s.active)
	}
	return r, ok
}

// Resize changes the surface size and updates the shader projections.
func (s *Surface) Resize(width, height float64) error {
	if !finitePositive(width) || !finitePositive(height) {
		return fmt.Errorf("%w: surface %vx%v", ErrInvalidSize, width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrDeviceDestroyed
	}
	s.width, s.height = width, height
	proj := Ortho(width, height)
	s.pathShader.SetProjection(proj)
	if s.background != nil {
		s.background.SetRect(Rect{Max: Point{X: width, Y: height}})
		s.background.Shader().SetProjection(proj)
	}
	Logger().Debug("freehand: surface resized", "width", width, "height", height)
	return nil
}

// SetBackgroundColor sets the color frames are cleared to.
func (s *Surface) SetBackgroundColor(c RGBA) {
	s.mu.Lock()
	s.clearColor = c
	s.mu.Unlock()
}

// SetBackgroundImage replaces the background image. A nil image removes it.
func (s *Surface) SetBackgroundImage(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setBackgroundImageLocked(img)
}

func (s *Surface) setBackgroundImageLocked(img image.Image) error {
	if s.destroyed {
		return ErrDeviceDestroyed
	}
	if img == nil {
		if s.background != nil {
			s.background.Destroy()
			s.background = nil
		}
		return nil
	}
	ts, err := s.device.NewTextureShader(img)
	if err != nil {
		return fmt.Errorf("freehand: create texture shader: %w", err)
	}
	ts.SetProjection(Ortho(s.width, s.height))
	if s.background != nil {
		s.background.Destroy()
	}
	s.background = NewImageQuad(ts, Rect{Max: Point{X: s.width, Y: s.height}})
	return nil
}

// Render draws one frame at surface size: the background, the completed
// strokes in order, then the active stroke. The frame can be read back with
// Frame.
func (s *Surface) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked(1, s.clearColor)
}

// Frame returns the pixels of the most recently rendered frame.
func (s *Surface) Frame() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil, ErrDeviceDestroyed
	}
	return s.device.ReadPixels()
}

func (s *Surface) renderLocked(scale float64, clear RGBA) error {
	if s.destroyed {
		return ErrDeviceDestroyed
	}
	w, h := exportSize(s.width, s.height, scale)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: frame %dx%d", ErrInvalidSize, w, h)
	}
	s.releaseRetiredLocked()
	if err := s.device.BeginFrame(w, h, clear); err != nil {
		return err
	}
	if err := s.drawLocked(); err != nil {
		return errors.Join(err, s.device.EndFrame())
	}
	return s.device.EndFrame()
}

func (s *Surface) drawLocked() error {
	if s.background != nil {
		if err := s.background.Render(); err != nil {
			return fmt.Errorf("freehand: render background: %w", err)
		}
	}
	for _, st := range s.strokes {
		if err := st.Render(); err != nil {
			return fmt.Errorf("freehand: render stroke: %w", err)
		}
	}
	if s.active != nil {
		if err := s.active.Render(); err != nil {
			return fmt.Errorf("freehand: render active stroke: %w", err)
		}
	}
	return nil
}

// LoadPersistentDrawing replaces the drawing with the strokes of d.
//
// Strokes are rebuilt on a new goroutine, then adopted through the
// surface's Dispatcher: completed strokes are replaced and the active stroke
// is cleared. Loaded strokes can be removed with Undo like drawn ones.
// onComplete, if non-nil, is called exactly once after adoption, from the
// dispatched function.
//
// A malformed record rejects the whole load with an error wrapping
// ErrInvalidRecord and leaves the drawing unchanged. A load overtaken by a
// later load or Clear completes with ErrLoadSuperseded; a cancelled ctx
// completes with ctx.Err().
func (s *Surface) LoadPersistentDrawing(ctx context.Context, d PersistentDrawing, onComplete func(error)) {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	shader := s.pathShader
	dispatch := s.dispatch
	s.mu.Unlock()

	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}

	go func() {
		strokes, err := buildStrokes(ctx, d, shader)
		dispatch(func() {
			if err == nil {
				err = s.adopt(ctx, seq, strokes)
			}
			if err != nil {
				Logger().Warn("freehand: persisted drawing rejected", "strokes", len(d.Strokes), "err", err)
			} else {
				Logger().Info("freehand: persisted drawing loaded", "strokes", len(strokes))
			}
			if onComplete != nil {
				onComplete(err)
			}
		})
	}()
}

// buildStrokes rebuilds every record of d. It makes no GPU calls.
func buildStrokes(ctx context.Context, d PersistentDrawing, shader PathShader) ([]*Stroke, error) {
	strokes := make([]*Stroke, 0, len(d.Strokes))
	for i, rec := range d.Strokes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := StrokeFromPersistent(rec, shader)
		if err != nil {
			return nil, fmt.Errorf("stroke %d: %w", i, err)
		}
		strokes = append(strokes, st)
	}
	return strokes, nil
}

func (s *Surface) adopt(ctx context.Context, seq uint64, strokes []*Stroke) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.destroyed || seq != s.loadSeq {
		return ErrLoadSuperseded
	}
	// Adoption may run on the loader goroutine; GPU buffers of the replaced
	// strokes are freed by the render goroutine.
	s.retired = append(s.retired, s.strokes...)
	if s.active != nil {
		s.retired = append(s.retired, s.active)
	}
	s.strokes = strokes
	s.active = nil
	return nil
}

// Destroy releases the background quad, the path shader and the device.
// Pending loads complete with ErrLoadSuperseded.
func (s *Surface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.clearLocked()
	s.releaseRetiredLocked()
	s.loadSeq++
	if s.background != nil {
		s.background.Destroy()
		s.background = nil
	}
	if r, ok := s.pathShader.(interface{ Destroy() }); ok {
		r.Destroy()
	}
	s.pathShader = nil
	if s.device != nil {
		s.device.Destroy()
		s.device = nil
	}
	s.destroyed = true
}
