package digest

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/digest/internal/output"
	"github.com/tyemirov/digest/internal/types"
	"github.com/tyemirov/digest/internal/utils"
)

const (
	infoDigestWritten = "Digest written"
	infoTokensSkipped = "Token estimation skipped for oversized digest"
)

// AssembleDigestText runs ProcessFiles, concatenates the fragments and estimates tokens.
// len(Content) always equals Stats.FileSizeInBytes.
func AssembleDigestText(ctx context.Context, options Options) (Digest, error) {
	result, processError := ProcessFiles(ctx, options)
	if processError != nil {
		return Digest{}, processError
	}
	content := concatenate(result.Files)
	result.Stats.EstimatedTokens = options.Estimator.Estimate(content)
	if result.Stats.EstimatedTokens.Skipped {
		utils.LoggerOrNop(options.Logger).Info(infoTokensSkipped, zap.Int("bytes", len(content)))
	}
	return Digest{Content: content, Files: result.Files, Stats: result.Stats}, nil
}

// ComputeFileStatsOnly reports per-file fragment sizes, largest first, without writing anything.
// Files of equal size keep their natural path order. Per-file tokens are left at zero when
// the digest is too large to estimate.
func ComputeFileStatsOnly(ctx context.Context, options Options) (FileStatsReport, error) {
	digest, assembleError := AssembleDigestText(ctx, options)
	if assembleError != nil {
		return FileStatsReport{}, assembleError
	}
	fileStats := make([]types.FileStat, 0, len(digest.Files))
	for _, processedFile := range digest.Files {
		fileStat := types.FileStat{Path: processedFile.FileName, SizeBytes: int64(len(processedFile.Content))}
		if !digest.Stats.EstimatedTokens.Skipped {
			fileStat.Tokens = options.Estimator.Count(processedFile.Content)
		}
		fileStats = append(fileStats, fileStat)
	}
	sort.SliceStable(fileStats, func(leftIndex, rightIndex int) bool {
		return fileStats[leftIndex].SizeBytes > fileStats[rightIndex].SizeBytes
	})
	return FileStatsReport{Files: fileStats, TotalTokens: digest.Stats.EstimatedTokens, Stats: digest.Stats}, nil
}

// WriteDigest persists content atomically at path and logs the run statistics.
func WriteDigest(content, path string, stats types.DigestStats, logger *zap.Logger) error {
	if writeError := output.WriteAtomic(content, path); writeError != nil {
		return writeError
	}
	utils.LoggerOrNop(logger).Info(infoDigestWritten,
		zap.String("path", path),
		zap.Int("files", stats.TotalFiles),
		zap.Int("included", stats.IncludedCount),
		zap.Int("defaultIgnored", stats.DefaultIgnoredCount),
		zap.Int("customIgnored", stats.CustomIgnoredCount),
		zap.Int("minified", stats.MinifiedCount),
		zap.Int("binary", stats.BinaryAndSVGFileCount),
		zap.Int("skipped", stats.SkippedFiles),
		zap.Int64("bytes", stats.FileSizeInBytes),
		zap.Int("tokens", stats.EstimatedTokens.PrimaryTokens))
	return nil
}

func concatenate(files []types.ProcessedFile) string {
	var builder strings.Builder
	for _, processedFile := range files {
		builder.WriteString(processedFile.Content)
	}
	return builder.String()
}
