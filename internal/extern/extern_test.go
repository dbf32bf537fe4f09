package extern

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFakeHelper(t *testing.T, respondsToVersion bool) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake helper script is POSIX shell only")
	}
	path := filepath.Join(t.TempDir(), "fake-helper.sh")
	script := "#!/bin/sh\necho not-a-version\nexit 1\n"
	if respondsToVersion {
		script = "#!/bin/sh\necho fakehelper 1.2.3\nexit 0\n"
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write helper: %v", err)
	}
	return path
}

func TestLocateConfiguredPath(t *testing.T) {
	path := writeFakeHelper(t, true)
	l, err := Locate(context.Background(), Tool{Name: "fake", ConfiguredPath: path})
	assert.NoError(t, err)
	assert.Equal(t, path, l.Path)
	assert.Equal(t, "fakehelper 1.2.3", l.Version)
}

func TestLocateVersionCheckFailed(t *testing.T) {
	path := writeFakeHelper(t, false)
	_, err := Locate(context.Background(), Tool{Name: "fake", ConfiguredPath: path})
	assert.ErrorIs(t, err, ErrVersionCheckFailed)
}

func TestLocateNotFound(t *testing.T) {
	_, err := Locate(context.Background(), Tool{Name: "fake", SearchNames: []string{"definitely-not-a-real-binary-xyz"}})
	assert.ErrorIs(t, err, ErrNotFound)
}
