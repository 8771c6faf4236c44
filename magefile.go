//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

var binaries = map[string]string{
	"hanzify":     "./cmd/hanzify",
	"hanzify-api": "./cmd/hanzify-api",
}

// Build compiles both binaries into ./bin. sqlite needs cgo.
func Build() error {
	mg.Deps(Vet)
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	env := map[string]string{"CGO_ENABLED": "1"}
	for name, pkg := range binaries {
		if err := sh.RunWithV(env, "go", "build", "-o", filepath.Join("bin", name), pkg); err != nil {
			return err
		}
	}
	return nil
}

func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

func Clean() error {
	return sh.Rm("bin")
}
