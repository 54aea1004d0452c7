//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

// Fetch downloads registry records for the NCT IDs given in TRIAL_IDS.
func Fetch() error {
	mg.Deps(Build)
	ids := os.Getenv("TRIAL_IDS")
	if ids == "" {
		return fmt.Errorf("set TRIAL_IDS to a space-separated list of NCT IDs")
	}
	return runCLI(append([]string{"fetch"}, strings.Fields(ids)...)...)
}

// Analyze runs the full pipeline (fetch, extract, normalize, decompose, store)
// for the NCT IDs given in TRIAL_IDS.
func Analyze() error {
	mg.Deps(Build)
	ids := os.Getenv("TRIAL_IDS")
	if ids == "" {
		return fmt.Errorf("set TRIAL_IDS to a space-separated list of NCT IDs")
	}
	return runCLI(append([]string{"analyze"}, strings.Fields(ids)...)...)
}

func runCLI(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
