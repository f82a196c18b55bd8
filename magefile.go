//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "translink"

// Default target to run when none is specified
var Default = Build

// Build builds the translink binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/translink")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestRace runs all tests with the race detector
func TestRace() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Install installs translink into $GOBIN
func Install() error {
	mg.Deps(Vet)
	return sh.RunV("go", "install", "./cmd/translink")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binary)
}
