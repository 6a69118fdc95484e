// Package digest assembles the Markdown digest of one or more directory trees.
package digest

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tyemirov/digest/internal/patterns"
	"github.com/tyemirov/digest/internal/tokenizer"
	"github.com/tyemirov/digest/internal/transform"
	"github.com/tyemirov/digest/internal/types"
)

// DefaultMaxFileSizeBytes is the largest text file read into memory when Options sets no limit.
const DefaultMaxFileSizeBytes int64 = 500 * 1024 * 1024

// ErrNoDirectories is returned when a run is requested without input directories.
var ErrNoDirectories = errors.New("no input directories")

// Options holds the inputs shared by every digest operation.
type Options struct {
	Directories []string
	// OutputFilePath is excluded from the digest when it lies inside an input directory.
	OutputFilePath   string
	Ignore           patterns.IgnoreOptions
	Minify           patterns.MinifyOptions
	RemoveWhitespace bool
	// MaxFileSizeBytes caps text files read into memory; larger files get a skip note.
	// Zero means DefaultMaxFileSizeBytes.
	MaxFileSizeBytes int64
	// MinifyDescriber replaces the placeholder of minified files when set.
	MinifyDescriber transform.MinifyDescriber
	// Estimator scores the assembled text; nil reports zero tokens.
	Estimator *tokenizer.Estimator
	Logger    *zap.Logger
}

func (options Options) fileSizeLimit() int64 {
	if options.MaxFileSizeBytes > 0 {
		return options.MaxFileSizeBytes
	}
	return DefaultMaxFileSizeBytes
}

// Result is the ordered fragment list and statistics of one pass.
type Result struct {
	Files []types.ProcessedFile
	Stats types.DigestStats
}

// Digest is the concatenated document together with its fragments and statistics.
type Digest struct {
	Content string
	Files   []types.ProcessedFile
	Stats   types.DigestStats
}

// FileStatsReport is the read-only size report produced by ComputeFileStatsOnly.
type FileStatsReport struct {
	// Files are sorted by fragment size, largest first.
	Files       []types.FileStat
	TotalTokens types.TokenEstimate
	Stats       types.DigestStats
}
