// Package classify decides how each discovered file contributes to a digest.
package classify

import (
	"path/filepath"

	"github.com/tyemirov/digest/internal/patterns"
	"github.com/tyemirov/digest/internal/types"
	"github.com/tyemirov/digest/internal/utils"
)

// Result is the classification of one file together with its binary type note.
type Result struct {
	Classification types.Classification
	TypeName       string
	IsSVG          bool
}

// Classify evaluates entry against the compiled pattern set of its root.
// Precedence: output file, default ignores, custom ignores, minify rules, then content.
// A non-nil error means the content could not be sniffed; the result is then Text so
// the caller records the file with an error fragment.
func Classify(entry types.FileEntry, set patterns.Set, outputPathAbsolute string) (Result, error) {
	if utils.SamePath(entry.FullPath, outputPathAbsolute) || set.MatchesDefaultIgnore(entry.RelativePath) {
		return Result{Classification: types.ClassificationDefaultIgnored}, nil
	}
	if set.MatchesCustomIgnore(entry.RelativePath) {
		return Result{Classification: types.ClassificationCustomIgnored}, nil
	}
	if set.MatchesMinify(entry.RelativePath) {
		return Result{Classification: types.ClassificationMinified}, nil
	}

	if IsSVG(entry.FullPath) {
		return Result{Classification: types.ClassificationBinaryOrSVG, TypeName: SVGTypeName, IsSVG: true}, nil
	}
	isBinary, sniffError := utils.IsFileBinary(entry.FullPath)
	if sniffError != nil {
		return Result{Classification: types.ClassificationText}, sniffError
	}
	if isBinary {
		return Result{Classification: types.ClassificationBinaryOrSVG, TypeName: TypeName(filepath.Ext(entry.FullPath))}, nil
	}
	return Result{Classification: types.ClassificationText}, nil
}
