// Package utils holds the logging, formatting and version helpers shared across digest packages.
package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion  = "unknown"
	develBuildLabel = "(devel)"
)

// Version is populated at build time:
//
//	go build -ldflags "-X 'github.com/tyemirov/digest/internal/utils.Version=v1.2.3'" ./cmd/digest
var Version = ""

// GetApplicationVersion reports the digest version: the link-time Version when set, then the
// module version recorded in build info, then git describe output for the enclosing work tree.
func GetApplicationVersion() string {
	if linked := strings.TrimSpace(Version); linked != "" {
		return linked
	}
	if buildInfo, available := debug.ReadBuildInfo(); available {
		if moduleVersion := buildInfo.Main.Version; moduleVersion != "" && moduleVersion != develBuildLabel {
			return moduleVersion
		}
	}
	workTree, found := gitWorkTreeRoot(".")
	if !found {
		return unknownVersion
	}
	for _, describeArguments := range gitDescribeAttempts {
		if described := describeWorkTree(workTree, describeArguments); described != "" {
			return described
		}
	}
	return unknownVersion
}

var gitDescribeAttempts = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

func describeWorkTree(workTree string, describeArguments []string) string {
	// #nosec G204
	describeCommand := exec.Command("git", describeArguments...)
	describeCommand.Dir = workTree
	described, describeError := describeCommand.Output()
	if describeError != nil {
		return ""
	}
	return strings.TrimSpace(string(described))
}

// gitWorkTreeRoot walks up from startDirectory to the first directory holding a .git entry.
// Linked worktrees and submodules use a .git file, so any entry type counts.
func gitWorkTreeRoot(startDirectory string) (string, bool) {
	candidate, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", false
	}
	for {
		if _, statError := os.Stat(filepath.Join(candidate, GitDirectoryName)); statError == nil {
			return candidate, true
		}
		parent := filepath.Dir(candidate)
		if parent == candidate {
			return "", false
		}
		candidate = parent
	}
}
