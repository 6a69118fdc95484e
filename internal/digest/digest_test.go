package digest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tyemirov/digest/internal/digest"
	"github.com/tyemirov/digest/internal/patterns"
	"github.com/tyemirov/digest/internal/tokenizer"
	"github.com/tyemirov/digest/internal/transform"
	"github.com/tyemirov/digest/internal/types"
	"github.com/tyemirov/digest/internal/utils"
)

type wordCounter struct{}

func (wordCounter) Name() string { return "words" }

func (wordCounter) CountString(input string) (int, error) { return len(strings.Fields(input)), nil }

type recordingCounter struct {
	calls int
	bytes int
}

func (counter *recordingCounter) Name() string { return "recording" }

func (counter *recordingCounter) CountString(input string) (int, error) {
	counter.calls++
	counter.bytes += len(input)
	return len(strings.Fields(input)), nil
}

func writeTree(testingHandle *testing.T, root string, files map[string]string) {
	testingHandle.Helper()
	for relativePath, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
		require.NoError(testingHandle, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(testingHandle, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

func defaultOptions(directories ...string) digest.Options {
	return digest.Options{
		Directories: directories,
		Ignore:      patterns.IgnoreOptions{UseDefaultIgnores: true},
	}
}

func fileNames(files []types.ProcessedFile) []string {
	names := make([]string, 0, len(files))
	for _, processedFile := range files {
		names = append(names, processedFile.FileName)
	}
	return names
}

func assertStatsInvariants(testingHandle *testing.T, assembled digest.Digest) {
	testingHandle.Helper()
	stats := assembled.Stats
	assert.Equal(testingHandle, stats.TotalFiles, stats.IncludedCount+stats.DefaultIgnoredCount+stats.CustomIgnoredCount)
	assert.Equal(testingHandle, int64(len(assembled.Content)), stats.FileSizeInBytes)
	assert.Equal(testingHandle, fileNames(assembled.Files), stats.IncludedFiles)
	assert.Len(testingHandle, assembled.Files, stats.IncludedCount)
}

func TestAssembleIsIdempotent(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"main.go":         "package main\n\nfunc main() {}\n",
		"docs/readme.md":  "# Title\n",
		"assets/logo.svg": "<svg></svg>",
		"data/blob.bin":   "\x00\x01\x02",
	})

	first, firstError := digest.AssembleDigestText(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, firstError)
	second, secondError := digest.AssembleDigestText(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, secondError)

	assert.Equal(testingHandle, first.Content, second.Content)
	assertStatsInvariants(testingHandle, first)
}

func TestNaturalOrdering(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"10-a/x.txt": "ten",
		"02-a/x.txt": "two",
		"root.txt":   "root",
		"01-a/x.txt": "one",
	})

	result, processError := digest.ProcessFiles(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, processError)
	assert.Equal(testingHandle, []string{"01-a/x.txt", "02-a/x.txt", "10-a/x.txt", "root.txt"}, result.Stats.IncludedFiles)
}

func TestMultiRootNamespacing(testingHandle *testing.T) {
	parent := testingHandle.TempDir()
	alpha := filepath.Join(parent, "alpha")
	beta := filepath.Join(parent, "beta")
	writeTree(testingHandle, alpha, map[string]string{"common.txt": "from alpha"})
	writeTree(testingHandle, beta, map[string]string{"common.txt": "from beta"})

	assembled, assembleError := digest.AssembleDigestText(context.Background(), defaultOptions(alpha, beta))
	require.NoError(testingHandle, assembleError)

	assert.Equal(testingHandle, []string{"alpha/common.txt", "beta/common.txt"}, assembled.Stats.IncludedFiles)
	assert.Contains(testingHandle, assembled.Content, "# alpha/common.txt\n\n```txt\nfrom alpha\n```\n\n")
	assert.Contains(testingHandle, assembled.Content, "# beta/common.txt\n\n```txt\nfrom beta\n```\n\n")
	assertStatsInvariants(testingHandle, assembled)
}

func TestSingleRootHasNoPrefix(testingHandle *testing.T) {
	root := filepath.Join(testingHandle.TempDir(), "project")
	writeTree(testingHandle, root, map[string]string{"common.txt": "content"})

	result, processError := digest.ProcessFiles(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, processError)
	assert.Equal(testingHandle, []string{"common.txt"}, result.Stats.IncludedFiles)
}

func TestIgnoreWinsOverMinify(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"secret.txt":    "hidden",
		"bundle.js":     "var a=1;",
		"kept.txt":      "kept",
		".digestignore": "secret.txt\n",
		".digestminify": "# generated bundles\nsecret.txt\n*.js\n",
	})

	assembled, assembleError := digest.AssembleDigestText(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, assembleError)

	assert.NotContains(testingHandle, assembled.Content, "# secret.txt")
	assert.NotContains(testingHandle, assembled.Content, "hidden")
	assert.Equal(testingHandle, 1, assembled.Stats.CustomIgnoredCount)
	assert.Equal(testingHandle, 1, assembled.Stats.MinifiedCount)
	assert.Contains(testingHandle, assembled.Content,
		"# bundle.js\n\nThis is a minified file of type: .js. The file exists but has been excluded from the codebase digest.\n\n")
	assertStatsInvariants(testingHandle, assembled)
}

func TestProgrammaticPatterns(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"generated/api.ts": "export {}",
		"vendor/lib.css":   "body{}",
		"app.ts":           "export const app = 1",
	})
	options := defaultOptions(root)
	options.Ignore.ExtraPatterns = []string{"generated/"}
	options.Minify.ExtraPatterns = []string{"vendor/"}

	result, processError := digest.ProcessFiles(context.Background(), options)
	require.NoError(testingHandle, processError)
	assert.Equal(testingHandle, []string{"app.ts", "vendor/lib.css"}, result.Stats.IncludedFiles)
	assert.Equal(testingHandle, 1, result.Stats.CustomIgnoredCount)
	assert.Equal(testingHandle, 1, result.Stats.MinifiedCount)
}

func TestDefaultIgnoresAndOutputSelfExclusion(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"node_modules/pkg/index.js": "module.exports = {}",
		".git/HEAD":                 "ref: refs/heads/main",
		"codebase.md":               "previous digest",
		"src/app.js":                "console.log(1)",
	})
	options := defaultOptions(root)
	options.OutputFilePath = filepath.Join(root, "codebase.md")

	result, processError := digest.ProcessFiles(context.Background(), options)
	require.NoError(testingHandle, processError)
	assert.Equal(testingHandle, []string{"src/app.js"}, result.Stats.IncludedFiles)
	assert.Equal(testingHandle, 3, result.Stats.DefaultIgnoredCount)

	options.Ignore.UseDefaultIgnores = false
	withoutDefaults, processError := digest.ProcessFiles(context.Background(), options)
	require.NoError(testingHandle, processError)
	assert.Equal(testingHandle, 1, withoutDefaults.Stats.DefaultIgnoredCount)
	assert.Equal(testingHandle, 3, withoutDefaults.Stats.IncludedCount)
}

func TestBinaryAndSVGFragments(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"logo.png":  "\x89PNG\r\n\x1a\n\x00\x00",
		"icon.svg":  "<svg xmlns=\"http://www.w3.org/2000/svg\"></svg>",
		"blob.data": "\x00\x00\x00",
	})

	assembled, assembleError := digest.AssembleDigestText(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, assembleError)
	assert.Contains(testingHandle, assembled.Content, "# logo.png\n\nThis is a binary file of the type: Image\n\n")
	assert.Contains(testingHandle, assembled.Content, "# icon.svg\n\nThis is a file of the type: SVG Image\n\n")
	assert.Contains(testingHandle, assembled.Content, "# blob.data\n\nThis is a binary file of the type: Binary\n\n")
	assert.Equal(testingHandle, 3, assembled.Stats.BinaryAndSVGFileCount)
	assert.Equal(testingHandle, 3, assembled.Stats.IncludedCount)
}

func TestWhitespaceRemovalExemption(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	source := "def f():\n    return   1"
	writeTree(testingHandle, root, map[string]string{"script.py": source, "script.js": source})
	options := defaultOptions(root)
	options.RemoveWhitespace = true

	assembled, assembleError := digest.AssembleDigestText(context.Background(), options)
	require.NoError(testingHandle, assembleError)
	assert.Contains(testingHandle, assembled.Content, "```py\n"+source+"\n```")
	assert.Contains(testingHandle, assembled.Content, "```js\ndef f(): return 1\n```")
}

func TestTripleBackticksStayInsideFence(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"example.md": "Example:\n```go\nfmt.Println()\n```\nafter fence\n",
		"other.txt":  "plain",
	})

	assembled, assembleError := digest.AssembleDigestText(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, assembleError)

	source := []byte(assembled.Content)
	document := goldmark.New().Parser().Parse(text.NewReader(source))
	var blocks []string
	var headings int
	walkError := ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.Kind() {
		case ast.KindHeading:
			headings++
		case ast.KindFencedCodeBlock:
			var builder strings.Builder
			for index := 0; index < node.Lines().Len(); index++ {
				segment := node.Lines().At(index)
				builder.Write(segment.Value(source))
			}
			blocks = append(blocks, builder.String())
		}
		return ast.WalkContinue, nil
	})
	require.NoError(testingHandle, walkError)
	require.Len(testingHandle, blocks, 2)
	assert.Equal(testingHandle, 2, headings)
	assert.Contains(testingHandle, blocks[0], "after fence")
}

func TestMinifyDescriberContract(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"app.min.js":    "!function(){}()",
		"lib.min.js":    "!function(){}()",
		".digestminify": "*.min.js\n",
	})

	withoutDescriber, assembleError := digest.AssembleDigestText(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, assembleError)

	var received []types.MinifyMetadata
	options := defaultOptions(root)
	options.MinifyDescriber = transform.MinifyDescriberFunc(func(metadata types.MinifyMetadata) string {
		received = append(received, metadata)
		return metadata.DefaultText
	})
	withIdentity, assembleError := digest.AssembleDigestText(context.Background(), options)
	require.NoError(testingHandle, assembleError)

	assert.Equal(testingHandle, withoutDescriber.Content, withIdentity.Content)
	require.Len(testingHandle, received, 2)
	assert.Equal(testingHandle, "app.min.js", received[0].DisplayPath)
	assert.Equal(testingHandle, ".js", received[0].Extension)
	assert.Equal(testingHandle, "Text", received[0].FileType)

	options.MinifyDescriber = transform.MinifyDescriberFunc(func(metadata types.MinifyMetadata) string {
		return "# " + metadata.DisplayPath + "\n\nbundled\n\n"
	})
	replaced, assembleError := digest.AssembleDigestText(context.Background(), options)
	require.NoError(testingHandle, assembleError)
	assert.Contains(testingHandle, replaced.Content, "# lib.min.js\n\nbundled\n\n")
	assertStatsInvariants(testingHandle, replaced)
}

func TestTokenEstimateAttached(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{"a.txt": "one two three"})
	options := defaultOptions(root)
	options.Estimator = tokenizer.NewEstimator(wordCounter{}, "words", nil)

	assembled, assembleError := digest.AssembleDigestText(context.Background(), options)
	require.NoError(testingHandle, assembleError)
	assert.Equal(testingHandle, len(strings.Fields(assembled.Content)), assembled.Stats.EstimatedTokens.PrimaryTokens)
	assert.False(testingHandle, assembled.Stats.EstimatedTokens.Skipped)
}

func TestComputeFileStatsOnlySortsBySize(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"small.txt":  "s",
		"large.txt":  strings.Repeat("large ", 50),
		"medium.txt": strings.Repeat("m ", 10),
	})
	options := defaultOptions(root)
	options.Estimator = tokenizer.NewEstimator(wordCounter{}, "words", nil)
	outputPath := filepath.Join(root, "codebase.md")
	options.OutputFilePath = outputPath

	report, reportError := digest.ComputeFileStatsOnly(context.Background(), options)
	require.NoError(testingHandle, reportError)
	require.Len(testingHandle, report.Files, 3)
	assert.Equal(testingHandle, "large.txt", report.Files[0].Path)
	assert.Equal(testingHandle, "medium.txt", report.Files[1].Path)
	assert.Equal(testingHandle, "small.txt", report.Files[2].Path)
	assert.Greater(testingHandle, report.Files[0].Tokens, 50)
	assert.NoFileExists(testingHandle, outputPath)
}

func TestComputeFileStatsOnlySkipsTokensForOversizedDigest(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"huge.txt":  strings.Repeat("token ", tokenizer.MaxEstimateBytes/6+1024),
		"small.txt": "tiny",
	})
	counter := &recordingCounter{}
	options := defaultOptions(root)
	options.Estimator = tokenizer.NewEstimator(counter, "recording", nil)

	report, reportError := digest.ComputeFileStatsOnly(context.Background(), options)
	require.NoError(testingHandle, reportError)
	assert.True(testingHandle, report.TotalTokens.Skipped)
	assert.Zero(testingHandle, counter.calls)
	assert.Zero(testingHandle, counter.bytes)
	require.Len(testingHandle, report.Files, 2)
	for _, fileStat := range report.Files {
		assert.Zero(testingHandle, fileStat.Tokens, fileStat.Path)
	}
}

func TestOversizedTextFileIsSkipped(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{
		"big.txt":   strings.Repeat("b", 2048),
		"small.txt": "fits",
		"image.png": "\x89PNG\x00" + strings.Repeat("p", 4096),
	})
	options := defaultOptions(root)
	options.MaxFileSizeBytes = 1024

	assembled, assembleError := digest.AssembleDigestText(context.Background(), options)
	require.NoError(testingHandle, assembleError)

	assert.Contains(testingHandle, assembled.Content, transform.SkippedFragment("big.txt", utils.FormatFileSize(2048), utils.FormatFileSize(1024)))
	assert.NotContains(testingHandle, assembled.Content, strings.Repeat("b", 2048))
	assert.Contains(testingHandle, assembled.Content, "```txt\nfits\n```")
	assert.Contains(testingHandle, assembled.Content, "This is a binary file of the type: Image")
	assert.Equal(testingHandle, 1, assembled.Stats.SkippedFiles)
	assert.Equal(testingHandle, 3, assembled.Stats.IncludedCount)
	assert.Equal(testingHandle, 1, assembled.Stats.BinaryAndSVGFileCount)
	assertStatsInvariants(testingHandle, assembled)
}

func TestWriteDigest(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{"a.txt": "alpha"})
	outputPath := filepath.Join(root, "codebase.md")
	options := defaultOptions(root)
	options.OutputFilePath = outputPath

	assembled, assembleError := digest.AssembleDigestText(context.Background(), options)
	require.NoError(testingHandle, assembleError)
	require.NoError(testingHandle, digest.WriteDigest(assembled.Content, outputPath, assembled.Stats, nil))

	written, readError := os.ReadFile(outputPath)
	require.NoError(testingHandle, readError)
	assert.Equal(testingHandle, assembled.Content, string(written))

	rerun, assembleError := digest.AssembleDigestText(context.Background(), options)
	require.NoError(testingHandle, assembleError)
	assert.Equal(testingHandle, assembled.Content, rerun.Content)
	assert.Equal(testingHandle, 1, rerun.Stats.DefaultIgnoredCount)
}

func TestUnreadableFileIsRecorded(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("permission bits are not enforced for root")
	}
	root := testingHandle.TempDir()
	writeTree(testingHandle, root, map[string]string{"locked.txt": "secret", "open.txt": "visible"})
	lockedPath := filepath.Join(root, "locked.txt")
	require.NoError(testingHandle, os.Chmod(lockedPath, 0o000))
	defer func() { _ = os.Chmod(lockedPath, 0o644) }()

	assembled, assembleError := digest.AssembleDigestText(context.Background(), defaultOptions(root))
	require.NoError(testingHandle, assembleError)
	assert.Contains(testingHandle, assembled.Content, "# locked.txt\n\nError reading file: ")
	assert.Equal(testingHandle, 1, assembled.Stats.SkippedFiles)
	assert.Equal(testingHandle, 2, assembled.Stats.IncludedCount)
	assertStatsInvariants(testingHandle, assembled)
}

func TestNoDirectories(testingHandle *testing.T) {
	_, processError := digest.ProcessFiles(context.Background(), digest.Options{})
	assert.ErrorIs(testingHandle, processError, digest.ErrNoDirectories)
}

func TestCancelledContext(testingHandle *testing.T) {
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()
	_, processError := digest.ProcessFiles(cancelledContext, defaultOptions(testingHandle.TempDir()))
	assert.ErrorIs(testingHandle, processError, context.Canceled)
}
