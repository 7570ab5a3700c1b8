//go:build integration

package itest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
)

const modulePath = "github.com/forPelevin/vsplit"

// findRepoRoot walks up from the working directory to this module's go.mod.
func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 10; i++ {
		b, err := os.ReadFile(filepath.Join(wd, "go.mod"))
		if err == nil && bytes.Contains(b, []byte("module "+modulePath)) {
			return wd, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			break
		}
		wd = parent
	}
	return "", errors.New("could not locate go.mod for " + modulePath)
}
