// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/freehand"
	"github.com/gogpu/naga"
)

//go:embed shaders/path.wgsl
var pathShaderSource string

//go:embed shaders/texture.wgsl
var textureShaderSource string

var (
	validateOnce sync.Once
	validateErr  error
)

// validateShaders compiles every embedded shader once with naga so a broken
// program surfaces as ErrShaderCompile before any pipeline is created.
func validateShaders() error {
	validateOnce.Do(func() {
		for _, s := range []struct{ name, src string }{
			{"path", pathShaderSource},
			{"texture", textureShaderSource},
		} {
			if err := compileWGSL(s.name, s.src); err != nil {
				validateErr = err
				return
			}
		}
	})
	return validateErr
}

func compileWGSL(name, src string) error {
	if src == "" {
		return fmt.Errorf("%w: %s shader source is empty", freehand.ErrShaderCompile, name)
	}
	spirv, err := naga.Compile(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", freehand.ErrShaderCompile, name, err)
	}
	if len(spirv) == 0 {
		return fmt.Errorf("%w: %s: empty SPIR-V output", freehand.ErrShaderCompile, name)
	}
	return nil
}
