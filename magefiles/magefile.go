//go:build mage

// Package main provides build targets for panelstore using Mage.
//
// Usage:
//
//	mage build     Compile the panelstore binary to bin/ with version metadata
//	mage test      Run all tests
//	mage cover     Run all tests and write coverage.out
//	mage lint      Run golangci-lint
//	mage migrate   Build, then create the tables of the configured database
//	mage clean     Remove build artifacts
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "panelstore"
	binaryDir  = "bin"
	cmdDir     = "./cmd/panelstore"
)

// Build compiles the panelstore binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binaryPath(), cmdDir)
}

// Test runs every package's tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cover runs the tests with a coverage profile.
func Cover() error {
	return sh.RunV("go", "test", "-coverprofile=coverage.out", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Migrate creates the missing tables using ./configs/config.yaml and the environment.
func Migrate() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath(), "migrate")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.Rm("coverage.out")
}

func binaryPath() string {
	return filepath.Join(binaryDir, binaryName)
}

// ldflags stamps the version variables of cmd/panelstore
func ldflags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "none"
	}

	flags := []string{
		fmt.Sprintf("-X main.version=%s", strings.TrimSpace(version)),
		fmt.Sprintf("-X main.commit=%s", strings.TrimSpace(commit)),
		fmt.Sprintf("-X main.buildDate=%s", time.Now().UTC().Format(time.RFC3339)),
	}
	return strings.Join(flags, " ")
}
