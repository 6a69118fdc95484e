package digest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tyemirov/digest/internal/classify"
	"github.com/tyemirov/digest/internal/patterns"
	"github.com/tyemirov/digest/internal/transform"
	"github.com/tyemirov/digest/internal/types"
	"github.com/tyemirov/digest/internal/utils"
	"github.com/tyemirov/digest/internal/walker"
)

const (
	errorResolveOutputFormat = "resolve output path %s: %w"
	errorLoadPatternsFormat  = "load patterns: %w"
	errorWalkFormat          = "walk input directories: %w"
	errorMissingSetFormat    = "no pattern set for root %s"

	debugFileClassified = "Classified file"
	warningFileSkipped  = "Skipping oversized file"
	warningFileUnread   = "Could not read file"
)

// ProcessFiles walks every input directory, classifies each file and builds its fragment.
// Files are processed one at a time in natural path order. A pass that has started runs to
// completion; ctx is only consulted before the walk begins.
func ProcessFiles(ctx context.Context, options Options) (Result, error) {
	if len(options.Directories) == 0 {
		return Result{}, ErrNoDirectories
	}
	if contextError := ctx.Err(); contextError != nil {
		return Result{}, contextError
	}
	logger := utils.LoggerOrNop(options.Logger)

	outputPathAbsolute := ""
	if options.OutputFilePath != "" {
		absolutePath, absoluteError := filepath.Abs(options.OutputFilePath)
		if absoluteError != nil {
			return Result{}, fmt.Errorf(errorResolveOutputFormat, options.OutputFilePath, absoluteError)
		}
		outputPathAbsolute = absolutePath
	}

	sets, loadError := patterns.LoadSets(options.Directories, options.Ignore, options.Minify)
	if loadError != nil {
		return Result{}, fmt.Errorf(errorLoadPatternsFormat, loadError)
	}
	entries, walkError := walker.Walk(options.Directories, logger)
	if walkError != nil {
		return Result{}, fmt.Errorf(errorWalkFormat, walkError)
	}

	result := Result{Files: []types.ProcessedFile{}, Stats: types.DigestStats{IncludedFiles: []string{}}}
	rootCount := len(options.Directories)
	for _, entry := range entries {
		set, known := sets[entry.SourceDirectory]
		if !known {
			return Result{}, fmt.Errorf(errorMissingSetFormat, entry.SourceDirectory)
		}
		displayPath := walker.DisplayPath(entry, rootCount)
		result.Stats.TotalFiles++

		classification, classifyError := classify.Classify(entry, set, outputPathAbsolute)
		logger.Debug(debugFileClassified,
			zap.String("path", displayPath),
			zap.String("classification", classification.Classification.String()))

		if !classification.Classification.Included() {
			if classification.Classification == types.ClassificationDefaultIgnored {
				result.Stats.DefaultIgnoredCount++
			} else {
				result.Stats.CustomIgnoredCount++
			}
			continue
		}

		var fragment string
		switch {
		case classifyError != nil:
			logger.Warn(warningFileUnread, zap.String("path", displayPath), zap.Error(classifyError))
			fragment = transform.ErrorFragment(displayPath, classifyError)
			result.Stats.SkippedFiles++
		case classification.Classification == types.ClassificationMinified:
			metadata := transform.MinifyMetadataFor(entry.FullPath, displayPath, classify.MinifiedFileType(entry.FullPath))
			fragment = transform.MinifiedFragment(metadata, options.MinifyDescriber)
			result.Stats.MinifiedCount++
		case classification.Classification == types.ClassificationBinaryOrSVG:
			fragment = transform.BinaryFragment(displayPath, classification.TypeName, classification.IsSVG)
			result.Stats.BinaryAndSVGFileCount++
		default:
			var skipped bool
			fragment, skipped = textFragment(entry, displayPath, options.RemoveWhitespace, options.fileSizeLimit(), logger)
			if skipped {
				result.Stats.SkippedFiles++
			}
		}

		result.Files = append(result.Files, types.ProcessedFile{FileName: displayPath, Content: fragment})
		result.Stats.IncludedCount++
		result.Stats.IncludedFiles = append(result.Stats.IncludedFiles, displayPath)
		result.Stats.FileSizeInBytes += int64(len(fragment))
	}
	return result, nil
}

// textFragment reads a text file and formats it. Oversized or unreadable files yield an
// explanatory fragment and report skipped.
func textFragment(entry types.FileEntry, displayPath string, removeWhitespace bool, sizeLimit int64, logger *zap.Logger) (string, bool) {
	fileInfo, statError := os.Stat(entry.FullPath)
	if statError != nil {
		logger.Warn(warningFileUnread, zap.String("path", displayPath), zap.Error(statError))
		return transform.ErrorFragment(displayPath, statError), true
	}
	if fileInfo.Size() > sizeLimit {
		logger.Warn(warningFileSkipped, zap.String("path", displayPath), zap.Int64("bytes", fileInfo.Size()))
		return transform.SkippedFragment(displayPath, utils.FormatFileSize(fileInfo.Size()), utils.FormatFileSize(sizeLimit)), true
	}
	content, readError := os.ReadFile(entry.FullPath)
	if readError != nil {
		logger.Warn(warningFileUnread, zap.String("path", displayPath), zap.Error(readError))
		return transform.ErrorFragment(displayPath, readError), true
	}
	return transform.TextFragment(displayPath, filepath.Ext(entry.FullPath), string(content), removeWhitespace), false
}
