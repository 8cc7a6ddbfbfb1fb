package common

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Build identity, injected via -ldflags at release time.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the semantic version string.
func GetVersion() string { return Version }

// GetBuild returns the build timestamp.
func GetBuild() string { return Build }

// GetGitCommit returns the short git commit hash.
func GetGitCommit() string { return GitCommit }

// GetFullVersion returns the version with build timestamp and commit.
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// LoadVersionFromFile reads a .version file next to the binary as a fallback
// for values the build did not inject. Lines are "key: value"; blank lines
// and # comments are skipped. Ldflags-provided values always win.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	f, err := os.Open(filepath.Join(filepath.Dir(exe), ".version"))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		applyVersionField(strings.TrimSpace(key), strings.TrimSpace(val))
	}
}

// applyVersionField sets one build-identity field if it is still at its default.
func applyVersionField(key, val string) {
	if val == "" {
		return
	}
	switch key {
	case "version":
		if Version == "dev" {
			Version = val
		}
	case "build":
		if Build == "unknown" {
			Build = val
		}
	case "commit":
		if GitCommit == "unknown" {
			GitCommit = val
		}
	}
}
