//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Build compiles the medtrans binary.
func Build() error {
	return sh.RunV("go", "build", "-o", "medtrans", "./cmd/medtrans")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// All vets, tests and builds.
func All() {
	mg.SerialDeps(Vet, Test, Build)
}

// Install installs medtrans into GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/medtrans")
}

// Clean removes the built binary.
func Clean() error {
	return sh.Rm("medtrans")
}
