//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the testbed.
func (Run) Engine() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run engine...")
	return goCmd("run", ".", "-config", "config.toml")
}

// Runs the testbed without a window.
func (Run) Headless() error {
	return goCmd("run", ".", "-config", "config.headless.toml")
}

// Runs every test.
func (Run) Test() error {
	return goCmd("test", "./...")
}
