package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/tyemirov/digest/internal/types"
	"github.com/tyemirov/digest/internal/utils"
)

const (
	summaryTitle          = "Digest statistics"
	includedFilesTitle    = "Included files"
	fileStatsTitle        = "Files by size"
	labelTotalFiles       = "Files found"
	labelIncluded         = "Included"
	labelDefaultIgnored   = "Default ignored"
	labelCustomIgnored    = "Custom ignored"
	labelMinified         = "Minified"
	labelBinary           = "Binary and SVG"
	labelSkipped          = "Skipped"
	labelSize             = "Digest size"
	labelTokens           = "Estimated tokens"
	tokensSkippedText     = "skipped (digest larger than 10mb)"
	tokensFormat          = "%s %s, %s ~%s"
	fileLineFormat        = "  %s (%s)\n"
	fileStatLineFormat    = "  %s (%s, %s tokens)\n"
	summaryLabelWidth     = 18
	indentation           = "  "
	jsonIndentation       = "  "
	errorRenderJSONFormat = "render statistics as JSON: %w"

	// FormatRaw selects the plain text statistics report.
	FormatRaw = "raw"
	// FormatJSON selects the JSON statistics report.
	FormatJSON = "json"
)

// SummaryOptions controls RenderSummary.
type SummaryOptions struct {
	// ShowIncludedFiles lists every included display path after the counters.
	ShowIncludedFiles bool
	// SortBySize orders the listed files by fragment size, largest first.
	SortBySize bool
	// Files supplies fragment sizes for the listing.
	Files []types.ProcessedFile
}

type summaryStyles struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	muted lipgloss.Style
}

func newSummaryStyles(styled bool) summaryStyles {
	if !styled {
		plain := lipgloss.NewStyle()
		return summaryStyles{title: plain, label: plain.Width(summaryLabelWidth), value: plain, muted: plain}
	}
	return summaryStyles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label: lipgloss.NewStyle().Width(summaryLabelWidth).Foreground(lipgloss.Color("8")),
		value: lipgloss.NewStyle().Bold(true),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// IsTerminal reports whether writer is an interactive terminal.
func IsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	return isFile && term.IsTerminal(int(file.Fd()))
}

// RenderSummary writes the statistics of one run to writer. Styling is applied only on terminals.
func RenderSummary(writer io.Writer, stats types.DigestStats, options SummaryOptions) error {
	styles := newSummaryStyles(IsTerminal(writer))
	var builder strings.Builder
	builder.WriteString(styles.title.Render(summaryTitle) + "\n")
	rows := []struct {
		label string
		value string
	}{
		{labelTotalFiles, utils.FormatCount(stats.TotalFiles)},
		{labelIncluded, utils.FormatCount(stats.IncludedCount)},
		{labelDefaultIgnored, utils.FormatCount(stats.DefaultIgnoredCount)},
		{labelCustomIgnored, utils.FormatCount(stats.CustomIgnoredCount)},
		{labelMinified, utils.FormatCount(stats.MinifiedCount)},
		{labelBinary, utils.FormatCount(stats.BinaryAndSVGFileCount)},
		{labelSkipped, utils.FormatCount(stats.SkippedFiles)},
		{labelSize, utils.FormatFileSize(stats.FileSizeInBytes)},
		{labelTokens, FormatTokenEstimate(stats.EstimatedTokens)},
	}
	for _, row := range rows {
		builder.WriteString(indentation + styles.label.Render(row.label) + styles.value.Render(row.value) + "\n")
	}

	if options.ShowIncludedFiles {
		builder.WriteString(styles.title.Render(includedFilesTitle) + "\n")
		for _, listed := range includedFileSizes(stats.IncludedFiles, options.Files, options.SortBySize) {
			builder.WriteString(fmt.Sprintf(fileLineFormat, listed.Path, styles.muted.Render(utils.FormatFileSize(listed.SizeBytes))))
		}
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

// FormatTokenEstimate renders both model estimates, or the skip notice.
func FormatTokenEstimate(estimate types.TokenEstimate) string {
	if estimate.Skipped {
		return tokensSkippedText
	}
	return fmt.Sprintf(tokensFormat,
		utils.FormatCount(estimate.PrimaryTokens), estimate.PrimaryModel,
		estimate.DerivedModel, utils.FormatCount(estimate.DerivedTokens))
}

// RenderFileStats writes a per-file size report in the requested format (FormatRaw or FormatJSON).
func RenderFileStats(writer io.Writer, format string, fileStats []types.FileStat, totals types.TokenEstimate) error {
	if format == FormatJSON {
		payload := struct {
			Files       []types.FileStat    `json:"files"`
			TotalTokens types.TokenEstimate `json:"totalTokens"`
		}{Files: fileStats, TotalTokens: totals}
		encoded, encodeError := json.MarshalIndent(payload, "", jsonIndentation)
		if encodeError != nil {
			return fmt.Errorf(errorRenderJSONFormat, encodeError)
		}
		_, writeError := writer.Write(append(encoded, '\n'))
		return writeError
	}

	styles := newSummaryStyles(IsTerminal(writer))
	var builder strings.Builder
	builder.WriteString(styles.title.Render(fileStatsTitle) + "\n")
	for _, fileStat := range fileStats {
		builder.WriteString(fmt.Sprintf(fileStatLineFormat, fileStat.Path,
			styles.muted.Render(utils.FormatFileSize(fileStat.SizeBytes)), utils.FormatCount(fileStat.Tokens)))
	}
	builder.WriteString(indentation + styles.label.Render(labelTokens) + styles.value.Render(FormatTokenEstimate(totals)) + "\n")
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func includedFileSizes(includedFiles []string, files []types.ProcessedFile, sortBySize bool) []types.FileStat {
	sizes := make(map[string]int64, len(files))
	for _, processedFile := range files {
		sizes[processedFile.FileName] = int64(len(processedFile.Content))
	}
	listed := make([]types.FileStat, 0, len(includedFiles))
	for _, includedPath := range includedFiles {
		listed = append(listed, types.FileStat{Path: includedPath, SizeBytes: sizes[includedPath]})
	}
	if sortBySize {
		sort.SliceStable(listed, func(leftIndex, rightIndex int) bool {
			return listed[leftIndex].SizeBytes > listed[rightIndex].SizeBytes
		})
	}
	return listed
}
