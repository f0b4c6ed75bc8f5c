// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command freehand renders freehand strokes to a PNG.
//
// Without -input it draws a few scripted gestures. With -input it loads a
// JSON persisted drawing, as written by Surface.Persistent.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gogpu/freehand"
	"github.com/gogpu/freehand/gpu"
)

func main() {
	var (
		width      = flag.Float64("width", 800, "surface width")
		height     = flag.Float64("height", 600, "surface height")
		scale      = flag.Float64("scale", 1, "export scale factor")
		output     = flag.String("output", "freehand.png", "output file")
		input      = flag.String("input", "", "persisted drawing (JSON) to render")
		useGPU     = flag.Bool("gpu", false, "render on the GPU instead of the CPU")
		background = flag.String("background", "#ffffff", "background color")
		lineCap    = flag.String("cap", "round", "line cap: butt, round or square")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		freehand.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	bg, err := freehand.ParseHex(*background)
	if err != nil {
		log.Fatalf("Invalid background: %v", err)
	}
	style := freehand.DefaultStyle()
	if err := style.Cap.UnmarshalText([]byte(*lineCap)); err != nil {
		log.Fatalf("Invalid cap: %v", err)
	}

	opts := []freehand.SurfaceOption{
		freehand.WithBackgroundColor(bg),
		freehand.WithStyle(style),
	}
	if *useGPU {
		dev, err := gpu.Open()
		if err != nil {
			log.Fatalf("Failed to open GPU: %v", err)
		}
		opts = append(opts, freehand.WithDevice(dev))
	}

	s, err := freehand.NewSurface(*width, *height, opts...)
	if err != nil {
		log.Fatalf("Failed to create surface: %v", err)
	}
	defer s.Destroy()

	if *input != "" {
		if err := load(s, *input); err != nil {
			log.Fatalf("Failed to load %s: %v", *input, err)
		}
	} else if err := drawDemo(s, *width, *height); err != nil {
		log.Fatalf("Failed to draw: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	if err := s.WritePNG(f, *scale); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to save: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Drawing saved to %s (%d strokes, scale %v)\n", *output, s.StrokeCount(), *scale)
}

func load(s *freehand.Surface, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var d freehand.PersistentDrawing
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	done := make(chan error, 1)
	s.LoadPersistentDrawing(ctx, d, func(err error) { done <- err })
	return <-done
}

// drawDemo draws a wave, a spiral and a tap across the surface.
func drawDemo(s *freehand.Surface, w, h float64) error {
	gesture := func(pts []freehand.Point) error {
		if err := s.BeginStroke(pts[0]); err != nil {
			return err
		}
		for _, p := range pts[1 : len(pts)-1] {
			if err := s.ExtendStroke(p); err != nil {
				return err
			}
		}
		_, err := s.EndStroke(pts[len(pts)-1])
		return err
	}

	var wave []freehand.Point
	for i := 0; i <= 60; i++ {
		t := float64(i) / 60
		wave = append(wave, freehand.Pt(w*(0.1+0.8*t), h*0.25+math.Sin(t*4*math.Pi)*h*0.1))
	}
	if err := s.SetLineColor(freehand.RGB(0.1, 0.3, 0.8)); err != nil {
		return err
	}
	if err := s.SetLineWidth(8); err != nil {
		return err
	}
	if err := gesture(wave); err != nil {
		return err
	}

	var spiral []freehand.Point
	cx, cy := w*0.5, h*0.65
	for i := 0; i <= 120; i++ {
		a := float64(i) / 120 * 6 * math.Pi
		r := 4 + a*math.Min(w, h)*0.012
		spiral = append(spiral, freehand.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a)))
	}
	if err := s.SetLineColor(freehand.RGB(0.8, 0.2, 0.2)); err != nil {
		return err
	}
	if err := s.SetLineOpacity(0.7); err != nil {
		return err
	}
	if err := s.SetLineWidth(5); err != nil {
		return err
	}
	if err := gesture(spiral); err != nil {
		return err
	}

	if err := s.SetLineWidth(18); err != nil {
		return err
	}
	tap := freehand.Pt(w*0.85, h*0.8)
	return gesture([]freehand.Point{tap, tap})
}
