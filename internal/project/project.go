// Package project locates the repository root the CLI operates against.
package project

import (
	"fmt"
	"os/exec"
	"strings"
)

// FindRoot returns the working tree's top-level directory via
// "git rev-parse --show-toplevel".
func FindRoot() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}
