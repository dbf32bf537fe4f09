// Package extern locates and validates external helper binaries: the
// community 7-Zip and RAR hash extractors, and the GPU cracker itself. It
// adapts the teacher's bounded-time remote-version-check pattern
// (update.CheckForUpdates) from an HTTP request to an os/exec invocation.
package extern

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound is returned when none of the candidate paths resolve to an
// executable.
var ErrNotFound = errors.New("extern: helper binary not found")

// ErrVersionCheckFailed is returned when the helper exists but fails or
// times out answering --version.
var ErrVersionCheckFailed = errors.New("extern: helper did not respond to --version")

const versionCheckTimeout = 5 * time.Second

// Tool describes one external helper this program can drive.
type Tool struct {
	Name           string
	ConfiguredPath string
	SearchNames    []string
	VersionFlag    string
}

// Located is a validated, runnable helper.
type Located struct {
	Tool    Tool
	Path    string
	Version string
}

// Locate resolves a tool to a runnable path: the configured path first, then
// each of SearchNames via exec.LookPath, validating with --version (or
// t.VersionFlag) under a 5 second timeout.
func Locate(ctx context.Context, t Tool) (*Located, error) {
	candidates := make([]string, 0, len(t.SearchNames)+1)
	if t.ConfiguredPath != "" {
		candidates = append(candidates, t.ConfiguredPath)
	}
	for _, name := range t.SearchNames {
		if resolved, err := exec.LookPath(name); err == nil {
			candidates = append(candidates, resolved)
		}
	}

	var lastErr error
	for _, path := range candidates {
		version, err := checkVersion(ctx, path, t.VersionFlag)
		if err != nil {
			lastErr = err
			continue
		}
		return &Located{Tool: t, Path: path, Version: version}, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNotFound
}

func checkVersion(ctx context.Context, path, flag string) (string, error) {
	if flag == "" {
		flag = "--version"
	}
	cctx, cancel := context.WithTimeout(ctx, versionCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, path, flag)
	out, err := cmd.Output()
	if err != nil {
		return "", ErrVersionCheckFailed
	}
	return strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0]), nil
}

// Run executes a located helper with args and returns its standard output
// (stderr is not included), bounded by ctx. Used for one-shot invocations like the 7-Zip hash
// extractor where the helper prints a single line and exits.
func Run(ctx context.Context, l *Located, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, l.Path, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
