package transform

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tyemirov/digest/internal/types"
)

// MinifyDescriber produces the fragment of a minified file.
// Describe is called exactly once per minified file, synchronously.
type MinifyDescriber interface {
	Describe(metadata types.MinifyMetadata) string
}

// MinifyDescriberFunc adapts a plain function to MinifyDescriber.
type MinifyDescriberFunc func(metadata types.MinifyMetadata) string

// Describe calls describerFunc. A nil func falls back to the default placeholder.
func (describerFunc MinifyDescriberFunc) Describe(metadata types.MinifyMetadata) string {
	if describerFunc == nil {
		return metadata.DefaultText
	}
	return describerFunc(metadata)
}

// MinifyMetadataFor builds the metadata of a minified file, including its default placeholder.
func MinifyMetadataFor(filePath, displayPath, fileType string) types.MinifyMetadata {
	extension := filepath.Ext(filePath)
	return types.MinifyMetadata{
		FilePath:    filePath,
		DisplayPath: displayPath,
		Extension:   extension,
		FileType:    fileType,
		DefaultText: fmt.Sprintf(minifiedFragmentFormat, displayPath, strings.TrimPrefix(extension, ".")),
	}
}

// MinifiedFragment returns the describer's fragment for metadata, or its default text without one.
func MinifiedFragment(metadata types.MinifyMetadata, describer MinifyDescriber) string {
	if describer == nil {
		return metadata.DefaultText
	}
	return describer.Describe(metadata)
}
