// Package patterns loads gitignore-style pattern files and compiles them into matchers.
package patterns

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	commentPrefix              = "#"
	closeWarningFormat         = "Warning: failed to close %s: %v\n"
	errorReadPatternFileFormat = "read pattern file %s: %w"
)

// ResolvePatternFilePath returns the pattern file location for directory.
// Absolute file names are used as given; relative names are resolved inside directory.
func ResolvePatternFilePath(directory, fileName string) string {
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(directory, fileName)
}

// Load reads fileName inside directory and returns its patterns in order.
// Blank lines and lines starting with # are dropped. A missing file yields an empty set.
//
// #nosec G304
func Load(directory, fileName string) ([]string, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, nil
	}
	patternFilePath := ResolvePatternFilePath(directory, fileName)
	fileHandle, openFileError := os.Open(patternFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorReadPatternFileFormat, patternFilePath, openFileError)
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			fmt.Fprintf(os.Stderr, closeWarningFormat, patternFilePath, closeError)
		}
	}()

	var loadedPatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		loadedPatterns = append(loadedPatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorReadPatternFileFormat, patternFilePath, scanError)
	}
	return loadedPatterns, nil
}
