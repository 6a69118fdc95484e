// Package walker enumerates regular files below one or more roots in a stable, natural order.
package walker

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tyemirov/digest/internal/types"
	"github.com/tyemirov/digest/internal/utils"
)

const (
	errorResolveRootFormat = "resolve root %s: %w"
	errorWalkRootFormat    = "walk %s: %w"
	warningAccessPath      = "Skipping unreadable path"
)

// Walk recursively lists regular files under every root, dotfiles included and
// symlinks excluded, sorted by root-relative path with numeric-aware collation.
// Entries with equal relative paths keep the order of their roots.
func Walk(roots []string, logger *zap.Logger) ([]types.FileEntry, error) {
	logger = utils.LoggerOrNop(logger)
	var entries []types.FileEntry
	for _, root := range roots {
		absoluteRoot, absoluteError := filepath.Abs(root)
		if absoluteError != nil {
			return nil, fmt.Errorf(errorResolveRootFormat, root, absoluteError)
		}
		rootEntries, walkError := walkRoot(absoluteRoot, logger)
		if walkError != nil {
			return nil, fmt.Errorf(errorWalkRootFormat, absoluteRoot, walkError)
		}
		entries = append(entries, rootEntries...)
	}
	SortEntries(entries)
	return entries, nil
}

func walkRoot(absoluteRoot string, logger *zap.Logger) ([]types.FileEntry, error) {
	var entries []types.FileEntry
	walkError := filepath.WalkDir(absoluteRoot, func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		if accessError != nil {
			if walkedPath == absoluteRoot {
				return accessError
			}
			logger.Warn(warningAccessPath, zap.String("path", walkedPath), zap.Error(accessError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.Type().IsRegular() {
			return nil
		}
		entries = append(entries, types.FileEntry{
			RelativePath:    utils.RelativePathOrSelf(walkedPath, absoluteRoot),
			FullPath:        walkedPath,
			SourceDirectory: absoluteRoot,
		})
		return nil
	})
	return entries, walkError
}

// SortEntries orders entries by relative path using locale-aware, numeric-aware comparison.
func SortEntries(entries []types.FileEntry) {
	collator := NewCollator()
	sort.SliceStable(entries, func(leftIndex, rightIndex int) bool {
		return collator.CompareString(entries[leftIndex].RelativePath, entries[rightIndex].RelativePath) < 0
	})
}

// NewCollator returns the collator used for file ordering: "file2" sorts before "file10".
// A collator is not safe for concurrent use.
func NewCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric)
}

// DisplayPath returns the path shown in digest headings. With more than one root the
// relative path is prefixed by the base name of the entry's root.
func DisplayPath(entry types.FileEntry, rootCount int) string {
	if rootCount > 1 {
		return path.Join(filepath.Base(entry.SourceDirectory), entry.RelativePath)
	}
	return entry.RelativePath
}
