// Package utils contains general helper functions used across the digest tool.
package utils

import (
	"path/filepath"
)

// File name constants used across the project.
const (
	// IgnoreFileName is the default name of the per-directory ignore file.
	IgnoreFileName = ".digestignore"
	// MinifyFileName is the default name of the per-directory minify file.
	MinifyFileName = ".digestminify"
	// DefaultOutputFileName is the digest written when no output path is given.
	DefaultOutputFileName = "codebase.md"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the per-project configuration file.
	ConfigFileName = ".digest.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".digest"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the relative path from root to fullPath using forward slashes.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// SamePath reports whether two paths resolve to the same cleaned absolute location.
func SamePath(firstPath, secondPath string) bool {
	if firstPath == "" || secondPath == "" {
		return false
	}
	firstAbsolute, firstError := filepath.Abs(firstPath)
	secondAbsolute, secondError := filepath.Abs(secondPath)
	if firstError != nil || secondError != nil {
		return filepath.Clean(firstPath) == filepath.Clean(secondPath)
	}
	return filepath.Clean(firstAbsolute) == filepath.Clean(secondAbsolute)
}
