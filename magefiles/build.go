//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const (
	shaderSrcDir = "assets/shaders/src"
	shaderOutDir = "assets/shaders"
)

type Build mg.Namespace

// Compiles every GLSL stage under assets/shaders/src to SPIR-V.
func (Build) Shaders() error {
	return buildShaders()
}

// Regenerates the engine context injector.
func (Build) Wire() error {
	return goCmdIn("engine", "generate", ".")
}

// Builds the testbed binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	return goCmd("build", "-o", "bin/sdengine", ".")
}

func buildShaders() error {
	var sources []string
	for _, stage := range []string{"*.vert", "*.frag", "*.comp"} {
		matches, err := filepath.Glob(filepath.Join(shaderSrcDir, stage))
		if err != nil {
			return err
		}
		sources = append(sources, matches...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no shader sources in %s", shaderSrcDir)
	}
	if err := os.MkdirAll(shaderOutDir, 0o755); err != nil {
		return err
	}
	for _, src := range sources {
		if err := compileShader(src, shaderOutDir); err != nil {
			return err
		}
	}
	return nil
}
