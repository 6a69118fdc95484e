// Package types defines every cross-package data structure used by the digest CLI.
package types

// Classification is the outcome of evaluating one discovered file.
type Classification int

const (
	// ClassificationText marks a file whose content is embedded in a fenced block.
	ClassificationText Classification = iota
	// ClassificationBinaryOrSVG marks a file described by a type note instead of its content.
	ClassificationBinaryOrSVG
	// ClassificationMinified marks a file replaced by a placeholder.
	ClassificationMinified
	// ClassificationDefaultIgnored marks the output file itself or a built-in ignore match.
	ClassificationDefaultIgnored
	// ClassificationCustomIgnored marks a match of a user or programmatic ignore pattern.
	ClassificationCustomIgnored
)

var classificationNames = map[Classification]string{
	ClassificationText:           "text",
	ClassificationBinaryOrSVG:    "binary",
	ClassificationMinified:       "minified",
	ClassificationDefaultIgnored: "default-ignored",
	ClassificationCustomIgnored:  "custom-ignored",
}

// String returns a short lower-case label suitable for log fields.
func (classification Classification) String() string {
	if name, known := classificationNames[classification]; known {
		return name
	}
	return "unknown"
}

// Included reports whether the classification contributes a fragment to the digest.
func (classification Classification) Included() bool {
	switch classification {
	case ClassificationText, ClassificationBinaryOrSVG, ClassificationMinified:
		return true
	default:
		return false
	}
}

// FileEntry is one discovered regular file. It lives only until it is classified.
type FileEntry struct {
	RelativePath    string
	FullPath        string
	SourceDirectory string
}

// ProcessedFile is the Markdown fragment contributed by a single input file.
type ProcessedFile struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

// MinifyMetadata is handed to a minify describer for every minified file.
type MinifyMetadata struct {
	FilePath    string
	DisplayPath string
	Extension   string
	FileType    string
	DefaultText string
}

// TokenEstimate holds the primary and ratio-derived token counts for a text.
type TokenEstimate struct {
	PrimaryTokens int    `json:"primaryTokens"`
	DerivedTokens int    `json:"derivedTokens"`
	PrimaryModel  string `json:"primaryModel,omitempty"`
	DerivedModel  string `json:"derivedModel,omitempty"`
	Skipped       bool   `json:"skipped,omitempty"`
}

// DigestStats aggregates counters for one pipeline run.
// TotalFiles always equals IncludedCount + DefaultIgnoredCount + CustomIgnoredCount.
type DigestStats struct {
	TotalFiles            int           `json:"totalFiles"`
	IncludedCount         int           `json:"includedCount"`
	DefaultIgnoredCount   int           `json:"defaultIgnoredCount"`
	CustomIgnoredCount    int           `json:"customIgnoredCount"`
	MinifiedCount         int           `json:"minifiedCount"`
	BinaryAndSVGFileCount int           `json:"binaryAndSvgFileCount"`
	SkippedFiles          int           `json:"skippedFiles"`
	IncludedFiles         []string      `json:"includedFiles"`
	FileSizeInBytes       int64         `json:"fileSizeInBytes"`
	EstimatedTokens       TokenEstimate `json:"estimatedTokens"`
}

// FileStat describes the size of one included fragment.
type FileStat struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	Tokens    int    `json:"tokens,omitempty"`
}
