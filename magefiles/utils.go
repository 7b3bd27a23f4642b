//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/magefile/mage/target"
)

// goCmd runs a go sub-command from the repository root, echoing its output.
func goCmd(args ...string) error {
	return sh.RunV(mg.GoCmd(), args...)
}

// goCmdIn is goCmd with the working directory set to dir.
func goCmdIn(dir string, args ...string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	defer os.Chdir(wd)
	return goCmd(args...)
}

// compileShader runs glslc for src unless the SPIR-V output is newer.
func compileShader(src, outDir string) error {
	out := filepath.Join(outDir, filepath.Base(src)+".spv")
	stale, err := target.Path(out, src)
	if err != nil {
		return err
	}
	if !stale {
		if mg.Verbose() {
			fmt.Printf("up to date: %s\n", out)
		}
		return nil
	}
	fmt.Printf("glslc %s\n", strings.TrimPrefix(src, shaderSrcDir+string(filepath.Separator)))
	if err := sh.Run("glslc", src, "-o", out); err != nil {
		return fmt.Errorf("error compiling shader %s: %w", src, err)
	}
	return nil
}
