// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestSurface(t *testing.T, opts ...SurfaceOption) *Surface {
	t.Helper()
	s, err := NewSurface(100, 80, opts...)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	t.Cleanup(s.Destroy)
	return s
}

func drawLine(t *testing.T, s *Surface, pts ...Point) *Stroke {
	t.Helper()
	if err := s.BeginStroke(pts[0]); err != nil {
		t.Fatalf("BeginStroke() error = %v", err)
	}
	for _, p := range pts[1 : len(pts)-1] {
		if err := s.ExtendStroke(p); err != nil {
			t.Fatalf("ExtendStroke() error = %v", err)
		}
	}
	st, err := s.EndStroke(pts[len(pts)-1])
	if err != nil {
		t.Fatalf("EndStroke() error = %v", err)
	}
	return st
}

func TestNewSurfaceInvalidSize(t *testing.T) {
	for _, size := range [][2]float64{{0, 10}, {10, -1}} {
		if _, err := NewSurface(size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewSurface(%v) error = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestSurfaceStraightScenario(t *testing.T) {
	s := newTestSurface(t)
	if err := s.SetLineColor(Red); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLineWidth(4); err != nil {
		t.Fatal(err)
	}
	st := drawLine(t, s, Pt(0, 0), Pt(10, 0), Pt(20, 0))

	if s.StrokeCount() != 1 {
		t.Fatalf("StrokeCount() = %d, want 1", s.StrokeCount())
	}
	if !s.CanUndo() {
		t.Error("CanUndo() = false, want true")
	}
	if s.ActiveStroke() != nil {
		t.Error("ActiveStroke() not cleared after EndStroke")
	}
	want := Rect{Min: Pt(0, -2), Max: Pt(20, 2)}
	if !rectNear(st.BoundingRect(), want, 1e-6) {
		t.Errorf("bounds = %v, want %v", st.BoundingRect(), want)
	}
	if st.Color() != Red || st.Width() != 4 || st.Opacity() != 1 {
		t.Errorf("stroke style = %+v", st.Style())
	}
}

func TestSurfaceUndoEmpty(t *testing.T) {
	s := newTestSurface(t)
	s.Undo()
	if s.CanUndo() {
		t.Error("CanUndo() = true on empty surface")
	}
	if s.StrokeCount() != 0 || s.ActiveStroke() != nil {
		t.Error("Undo on empty surface changed state")
	}
}

func TestSurfaceUndo(t *testing.T) {
	s := newTestSurface(t)
	a := drawLine(t, s, Pt(0, 0), Pt(10, 10))
	drawLine(t, s, Pt(20, 0), Pt(30, 10))

	s.Undo()
	got := s.Strokes()
	if len(got) != 1 || got[0] != a {
		t.Fatalf("Strokes() after undo = %v, want only the first stroke", got)
	}
	s.Undo()
	if s.StrokeCount() != 0 || s.CanUndo() {
		t.Error("second Undo did not empty the surface")
	}
}

func TestSurfaceClear(t *testing.T) {
	s := newTestSurface(t)
	for i := range 3 {
		x := float64(i * 20)
		drawLine(t, s, Pt(x, 0), Pt(x+5, 10), Pt(x+10, 0))
	}
	if err := s.BeginStroke(Pt(50, 50)); err != nil {
		t.Fatal(err)
	}

	s.Clear()
	if s.StrokeCount() != 0 {
		t.Errorf("StrokeCount() after Clear = %d, want 0", s.StrokeCount())
	}
	if s.CanUndo() {
		t.Error("CanUndo() after Clear = true")
	}
	if s.ActiveStroke() != nil {
		t.Error("ActiveStroke() after Clear not nil")
	}
	s.Clear()
}

func TestSurfaceProtocolErrors(t *testing.T) {
	s := newTestSurface(t)
	if err := s.ExtendStroke(Pt(1, 1)); !errors.Is(err, ErrNoActiveStroke) {
		t.Errorf("ExtendStroke without stroke error = %v, want ErrNoActiveStroke", err)
	}
	if _, err := s.EndStroke(Pt(1, 1)); !errors.Is(err, ErrNoActiveStroke) {
		t.Errorf("EndStroke without stroke error = %v, want ErrNoActiveStroke", err)
	}
	if err := s.BeginStroke(Pt(0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginStroke(Pt(5, 5)); !errors.Is(err, ErrStrokeInProgress) {
		t.Errorf("second BeginStroke error = %v, want ErrStrokeInProgress", err)
	}
	if got := s.ActiveStroke().InputPoints(); len(got) != 1 || got[0] != Pt(0, 0) {
		t.Errorf("active stroke points = %v, want [(0,0)]", got)
	}
	if err := s.SetLineWidth(-1); !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("SetLineWidth(-1) error = %v, want ErrInvalidStyle", err)
	}
}

func TestSurfaceCancelStroke(t *testing.T) {
	s := newTestSurface(t)
	drawLine(t, s, Pt(0, 0), Pt(10, 10))
	if err := s.BeginStroke(Pt(20, 20)); err != nil {
		t.Fatal(err)
	}
	s.CancelStroke()
	if s.ActiveStroke() != nil {
		t.Error("ActiveStroke() after CancelStroke not nil")
	}
	if s.StrokeCount() != 1 || !s.CanUndo() {
		t.Error("CancelStroke changed the history")
	}
	s.CancelStroke()
}

func TestSurfaceStyleSnapshot(t *testing.T) {
	s := newTestSurface(t)
	if err := s.SetLineWidth(2); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginStroke(Pt(0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLineWidth(9); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLineCap(CapRound); err != nil {
		t.Fatal(err)
	}
	st, err := s.EndStroke(Pt(10, 0))
	if err != nil {
		t.Fatal(err)
	}
	if st.Width() != 2 || st.Style().Cap != CapButt {
		t.Errorf("stroke style = %+v, want width 2 butt", st.Style())
	}
	if s.Style().Width != 9 {
		t.Errorf("surface width = %v, want 9", s.Style().Width)
	}
}

func TestSurfaceDelegate(t *testing.T) {
	var willDraw int
	var drawn []*Stroke
	var s *Surface
	s = newTestSurface(t, WithDelegate(DelegateFuncs{
		OnWillDraw: func(got *Surface) {
			if got != s {
				t.Error("WillDraw received a different surface")
			}
			willDraw++
		},
		OnDidDrawStroke: func(got *Surface, st *Stroke) {
			// Hooks run outside the lock and may call back in.
			if got.StrokeCount() == 0 {
				t.Error("DidDrawStroke fired before the stroke was completed")
			}
			drawn = append(drawn, st)
		},
	}))

	st := drawLine(t, s, Pt(0, 0), Pt(10, 10), Pt(20, 0))
	if willDraw != 1 {
		t.Errorf("WillDraw called %d times, want 1", willDraw)
	}
	if len(drawn) != 1 || drawn[0] != st {
		t.Errorf("DidDrawStroke received %v, want [%p]", drawn, st)
	}

	// Nil hooks are no-ops.
	s.delegate = DelegateFuncs{}
	drawLine(t, s, Pt(0, 0), Pt(5, 5))
}

func TestSurfaceBounds(t *testing.T) {
	s := newTestSurface(t)
	if _, ok := s.Bounds(); ok {
		t.Error("Bounds() reported strokes on an empty surface")
	}
	a := drawLine(t, s, Pt(0, 0), Pt(10, 0))
	b := drawLine(t, s, Pt(40, 40), Pt(50, 60))
	got, ok := s.Bounds()
	if !ok {
		t.Fatal("Bounds() = false with strokes")
	}
	if want := a.BoundingRect().Union(b.BoundingRect()); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestSurfaceResizeUpdatesProjection(t *testing.T) {
	dev := &recordingDevice{SoftwareDevice: NewSoftwareDevice()}
	s := newTestSurface(t, WithDevice(dev))
	if got := dev.path.Projection(); got != Ortho(100, 80) {
		t.Errorf("initial projection = %+v, want Ortho(100, 80)", got)
	}
	if err := s.Resize(50, 25); err != nil {
		t.Fatal(err)
	}
	if got := dev.path.Projection(); got != Ortho(50, 25) {
		t.Errorf("projection after Resize = %+v, want Ortho(50, 25)", got)
	}
	if err := s.Resize(0, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(0, 1) error = %v, want ErrInvalidSize", err)
	}
}

func TestSurfaceUndoReleasesMesh(t *testing.T) {
	dev := &recordingDevice{SoftwareDevice: NewSoftwareDevice()}
	s := newTestSurface(t, WithDevice(dev))
	st := drawLine(t, s, Pt(0, 0), Pt(10, 10))
	s.Undo()
	if len(dev.path.released) != 1 || dev.path.released[0] != st.Mesh() {
		t.Errorf("released meshes = %v, want the undone stroke's mesh", dev.path.released)
	}
}

func TestSurfaceDestroy(t *testing.T) {
	dev := &recordingDevice{SoftwareDevice: NewSoftwareDevice()}
	s, err := NewSurface(10, 10, WithDevice(dev))
	if err != nil {
		t.Fatal(err)
	}
	s.Destroy()
	s.Destroy()
	if !dev.destroyed {
		t.Error("Destroy did not release the device")
	}
	if err := s.Render(); !errors.Is(err, ErrDeviceDestroyed) {
		t.Errorf("Render after Destroy error = %v, want ErrDeviceDestroyed", err)
	}
}

// queueDispatcher collects dispatched functions for the test to run.
type queueDispatcher chan func()

func (q queueDispatcher) dispatch(f func()) { q <- f }

func (q queueDispatcher) run(t *testing.T) {
	t.Helper()
	select {
	case f := <-q:
		f()
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for dispatched load")
	}
}

func twoRecords() PersistentDrawing {
	return PersistentDrawing{Strokes: []PersistentStroke{
		{Points: []Point{Pt(0, 0), Pt(10, 5), Pt(20, 0)}, Color: Blue, Opacity: 1, Width: 3},
		{Points: []Point{Pt(30, 30)}, Color: Red, Opacity: 0.5, Width: 6, Cap: CapRound},
	}}
}

func waitLoad(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load completion")
		return nil
	}
}

func TestSurfaceLoadPersistentDrawing(t *testing.T) {
	s := newTestSurface(t)
	drawLine(t, s, Pt(50, 50), Pt(60, 60))
	if err := s.BeginStroke(Pt(1, 1)); err != nil {
		t.Fatal(err)
	}

	calls := make(chan error, 4)
	s.LoadPersistentDrawing(context.Background(), twoRecords(), func(err error) {
		if s.StrokeCount() != 2 {
			t.Error("completion fired before adoption")
		}
		calls <- err
	})
	if err := waitLoad(t, calls); err != nil {
		t.Fatalf("load error = %v", err)
	}
	select {
	case <-calls:
		t.Fatal("completion fired more than once")
	case <-time.After(50 * time.Millisecond):
	}

	got := s.Strokes()
	if len(got) != 2 {
		t.Fatalf("StrokeCount() = %d, want 2", len(got))
	}
	if got[0].Color() != Blue || got[1].Color() != Red {
		t.Error("loaded strokes out of order")
	}
	if !got[0].Sealed() || !got[1].Sealed() {
		t.Error("loaded strokes are not sealed")
	}
	if s.ActiveStroke() != nil {
		t.Error("active stroke survived load")
	}

	// Loaded strokes are undone from the top like drawn ones.
	if !s.CanUndo() {
		t.Fatal("CanUndo() after load = false")
	}
	s.Undo()
	if got := s.Strokes(); len(got) != 1 || got[0].Color() != Blue {
		t.Error("Undo after load did not remove the last loaded stroke")
	}
	s.Undo()
	if s.CanUndo() {
		t.Error("CanUndo() = true after undoing every loaded stroke")
	}
}

func TestSurfaceLoadDefersRelease(t *testing.T) {
	dev := &recordingDevice{SoftwareDevice: NewSoftwareDevice()}
	s := newTestSurface(t, WithDevice(dev))
	old := drawLine(t, s, Pt(0, 0), Pt(10, 10))
	if err := s.BeginStroke(Pt(5, 5)); err != nil {
		t.Fatal(err)
	}
	active := s.ActiveStroke()

	done := make(chan error, 1)
	s.LoadPersistentDrawing(context.Background(), twoRecords(), func(err error) { done <- err })
	if err := waitLoad(t, done); err != nil {
		t.Fatal(err)
	}
	if len(dev.path.released) != 0 {
		t.Fatalf("released %d meshes off the render goroutine, want 0", len(dev.path.released))
	}

	if err := s.Render(); err != nil {
		t.Fatal(err)
	}
	released := map[*Mesh]bool{}
	for _, m := range dev.path.released {
		released[m] = true
	}
	if len(dev.path.released) != 2 || !released[old.Mesh()] || !released[active.Mesh()] {
		t.Errorf("released meshes after Render = %v, want the replaced strokes", dev.path.released)
	}

	if err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if len(dev.path.released) != 2 {
		t.Errorf("released %d meshes after second Render, want 2", len(dev.path.released))
	}
}

func TestSurfaceLoadMatchesLive(t *testing.T) {
	s := newTestSurface(t)
	live := drawLine(t, s, walk(25)...)
	rec := PersistentDrawing{Strokes: []PersistentStroke{live.Persistent()}}

	done := make(chan error, 1)
	s.LoadPersistentDrawing(context.Background(), rec, func(err error) { done <- err })
	if err := waitLoad(t, done); err != nil {
		t.Fatal(err)
	}
	loaded := s.Strokes()[0]
	if loaded.VertexCount() != live.VertexCount() || loaded.BoundingRect() != live.BoundingRect() {
		t.Errorf("loaded stroke (%d, %v) differs from live (%d, %v)",
			loaded.VertexCount(), loaded.BoundingRect(), live.VertexCount(), live.BoundingRect())
	}
}

func TestSurfaceLoadInvalidRecord(t *testing.T) {
	s := newTestSurface(t)
	keep := drawLine(t, s, Pt(0, 0), Pt(10, 10))

	d := twoRecords()
	d.Strokes[1].Width = 0
	done := make(chan error, 1)
	s.LoadPersistentDrawing(context.Background(), d, func(err error) { done <- err })
	if err := waitLoad(t, done); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("load error = %v, want ErrInvalidRecord", err)
	}
	if got := s.Strokes(); len(got) != 1 || got[0] != keep {
		t.Error("rejected load changed the drawing")
	}
	if !s.CanUndo() {
		t.Error("rejected load left nothing to undo")
	}

	d = PersistentDrawing{Strokes: []PersistentStroke{{Color: Red, Opacity: 1, Width: 2}}}
	s.LoadPersistentDrawing(context.Background(), d, func(err error) { done <- err })
	if err := waitLoad(t, done); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("empty record error = %v, want ErrInvalidRecord", err)
	}
}

func TestSurfaceLoadCancelled(t *testing.T) {
	s := newTestSurface(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	s.LoadPersistentDrawing(ctx, twoRecords(), func(err error) { done <- err })
	if err := waitLoad(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("load error = %v, want context.Canceled", err)
	}
	if s.StrokeCount() != 0 {
		t.Error("cancelled load adopted strokes")
	}
}

func TestSurfaceLoadSuperseded(t *testing.T) {
	q := make(queueDispatcher, 2)
	s := newTestSurface(t, WithDispatcher(q.dispatch))

	first := make(chan error, 1)
	second := make(chan error, 1)
	s.LoadPersistentDrawing(context.Background(), twoRecords(), func(err error) { first <- err })
	s.LoadPersistentDrawing(context.Background(), PersistentDrawing{Strokes: twoRecords().Strokes[:1]},
		func(err error) { second <- err })
	q.run(t)
	q.run(t)

	if err := waitLoad(t, first); !errors.Is(err, ErrLoadSuperseded) {
		t.Errorf("first load error = %v, want ErrLoadSuperseded", err)
	}
	if err := waitLoad(t, second); err != nil {
		t.Errorf("second load error = %v", err)
	}
	if s.StrokeCount() != 1 {
		t.Errorf("StrokeCount() = %d, want 1 from the second load", s.StrokeCount())
	}
}

func TestSurfaceClearSupersedesLoad(t *testing.T) {
	q := make(queueDispatcher, 1)
	s := newTestSurface(t, WithDispatcher(q.dispatch))

	done := make(chan error, 1)
	s.LoadPersistentDrawing(context.Background(), twoRecords(), func(err error) { done <- err })
	s.Clear()
	q.run(t)
	if err := waitLoad(t, done); !errors.Is(err, ErrLoadSuperseded) {
		t.Errorf("load error = %v, want ErrLoadSuperseded", err)
	}
	if s.StrokeCount() != 0 {
		t.Error("superseded load adopted strokes")
	}
}

// endFrameErrDevice fails every EndFrame after closing the frame.
type endFrameErrDevice struct {
	*recordingDevice
	err error
}

func (d *endFrameErrDevice) EndFrame() error {
	_ = d.SoftwareDevice.EndFrame()
	return d.err
}

func TestSurfaceRenderJoinsErrors(t *testing.T) {
	errDraw := errors.New("draw failed")
	errEnd := errors.New("end frame failed")

	tests := []struct {
		name    string
		endErr  error
		wantErr []error
	}{
		{"draw only", nil, []error{errDraw}},
		{"draw and end frame", errEnd, []error{errDraw, errEnd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &endFrameErrDevice{
				recordingDevice: &recordingDevice{SoftwareDevice: NewSoftwareDevice()},
				err:             tt.endErr,
			}
			s := newTestSurface(t, WithDevice(dev))
			drawLine(t, s, Pt(0, 0), Pt(10, 10))
			dev.path.prepareErr = errDraw

			err := s.Render()
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("Render() error = %v, want it to wrap %v", err, want)
				}
			}
		})
	}
}
