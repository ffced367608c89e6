// ABOUTME: Test helper equivalent to testing.T.Chdir (Go 1.24+) for older toolchains.
// ABOUTME: Changes the working directory and restores the previous one when the test ends.
package site

import (
	"os"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
