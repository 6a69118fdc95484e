// Package output persists digests and renders their statistics.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	temporaryFilePattern = ".%s.*.tmp"
	defaultFileMode      = os.FileMode(0o644)

	errorCreateDirectoryFormat = "create output directory %s: %w"
	errorCreateTemporaryFormat = "create temporary file in %s: %w"
	errorWriteTemporaryFormat  = "write temporary file %s: %w"
	errorChmodTemporaryFormat  = "set mode of temporary file %s: %w"
	errorSyncTemporaryFormat   = "sync temporary file %s: %w"
	errorCloseTemporaryFormat  = "close temporary file %s: %w"
	errorRenameFormat          = "replace %s: %w"
	errorSizeMismatchFormat    = "%w: wrote %d of %d bytes to %s"
)

// ErrWriteSizeMismatch reports that the temporary file does not hold the full digest.
var ErrWriteSizeMismatch = errors.New("written size does not match digest size")

// TemporaryFilePrefix is the name prefix of WriteAtomic's temporary siblings for a target base name.
func TemporaryFilePrefix(targetPath string) string {
	return "." + filepath.Base(targetPath) + "."
}

// IsTemporaryFile reports whether candidatePath is a temporary sibling of targetPath.
func IsTemporaryFile(candidatePath, targetPath string) bool {
	if filepath.Dir(filepath.Clean(candidatePath)) != filepath.Dir(filepath.Clean(targetPath)) {
		return false
	}
	base := filepath.Base(candidatePath)
	prefix := TemporaryFilePrefix(targetPath)
	return len(base) > len(prefix) && base[:len(prefix)] == prefix && filepath.Ext(base) == ".tmp"
}

// WriteAtomic writes content to a temporary sibling of path, verifies its size and renames it
// over path. The target is either untouched or fully replaced; the temporary file never
// survives a failure. An existing target keeps its permissions; a new one gets 0644.
func WriteAtomic(content, path string) (resultError error) {
	directory := filepath.Dir(path)
	if mkdirError := os.MkdirAll(directory, 0o755); mkdirError != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, directory, mkdirError)
	}
	temporaryFile, createError := os.CreateTemp(directory, fmt.Sprintf(temporaryFilePattern, filepath.Base(path)))
	if createError != nil {
		return fmt.Errorf(errorCreateTemporaryFormat, directory, createError)
	}
	temporaryPath := temporaryFile.Name()
	closed := false
	defer func() {
		if resultError == nil {
			return
		}
		if !closed {
			_ = temporaryFile.Close()
		}
		_ = os.Remove(temporaryPath)
	}()

	if chmodError := temporaryFile.Chmod(targetMode(path)); chmodError != nil {
		return fmt.Errorf(errorChmodTemporaryFormat, temporaryPath, chmodError)
	}
	if _, writeError := temporaryFile.WriteString(content); writeError != nil {
		return fmt.Errorf(errorWriteTemporaryFormat, temporaryPath, writeError)
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		return fmt.Errorf(errorSyncTemporaryFormat, temporaryPath, syncError)
	}
	closeError := temporaryFile.Close()
	closed = true
	if closeError != nil {
		return fmt.Errorf(errorCloseTemporaryFormat, temporaryPath, closeError)
	}
	if verifyError := verifySize(temporaryPath, int64(len(content))); verifyError != nil {
		return verifyError
	}
	if renameError := os.Rename(temporaryPath, path); renameError != nil {
		return fmt.Errorf(errorRenameFormat, path, renameError)
	}
	return nil
}

var statFile = os.Stat

func targetMode(path string) os.FileMode {
	fileInfo, statError := os.Stat(path)
	if statError != nil || !fileInfo.Mode().IsRegular() {
		return defaultFileMode
	}
	return fileInfo.Mode().Perm()
}

func verifySize(temporaryPath string, expectedSize int64) error {
	fileInfo, statError := statFile(temporaryPath)
	if statError != nil {
		return fmt.Errorf(errorWriteTemporaryFormat, temporaryPath, statError)
	}
	if fileInfo.Size() != expectedSize {
		return fmt.Errorf(errorSizeMismatchFormat, ErrWriteSizeMismatch, fileInfo.Size(), expectedSize, temporaryPath)
	}
	return nil
}
