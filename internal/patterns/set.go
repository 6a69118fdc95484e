package patterns

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tyemirov/digest/internal/utils"
)

const (
	errorLoadIgnoreFormat  = "loading ignore patterns for %s: %w"
	errorLoadMinifyFormat  = "loading minify patterns for %s: %w"
	errorResolveRootFormat = "resolve root %s: %w"
)

// IgnoreOptions configures the ignore matcher of every root.
type IgnoreOptions struct {
	// FileName is the per-root ignore file; empty selects utils.IgnoreFileName.
	FileName string
	// UseDefaultIgnores enables the built-in DefaultIgnorePatterns tier.
	UseDefaultIgnores bool
	// ExtraPatterns are programmatic additions to the custom tier.
	ExtraPatterns []string
}

// MinifyOptions configures the minify matcher of every root.
type MinifyOptions struct {
	// FileName is the per-root minify file; empty selects utils.MinifyFileName.
	FileName string
	// ExtraPatterns are programmatic additions to the minify rules.
	ExtraPatterns []string
}

// Set is the compiled pattern pair of one root: a two-tier ignore matcher and a minify matcher.
type Set struct {
	Root          string
	DefaultIgnore *Matcher
	CustomIgnore  *Matcher
	Minify        *Matcher
}

// MatchesDefaultIgnore reports whether relativePath hits the built-in ignore tier.
func (set Set) MatchesDefaultIgnore(relativePath string) bool {
	return set.DefaultIgnore.Matches(relativePath)
}

// MatchesCustomIgnore reports whether relativePath hits a user or programmatic ignore pattern.
func (set Set) MatchesCustomIgnore(relativePath string) bool {
	return set.CustomIgnore.Matches(relativePath)
}

// MatchesIgnore reports whether relativePath hits either ignore tier.
func (set Set) MatchesIgnore(relativePath string) bool {
	return set.MatchesDefaultIgnore(relativePath) || set.MatchesCustomIgnore(relativePath)
}

// MatchesMinify reports whether relativePath hits a minify pattern.
func (set Set) MatchesMinify(relativePath string) bool {
	return set.Minify.Matches(relativePath)
}

// LoadSet loads and compiles the ignore and minify matchers for root.
func LoadSet(root string, ignoreOptions IgnoreOptions, minifyOptions MinifyOptions) (Set, error) {
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return Set{}, fmt.Errorf(errorResolveRootFormat, root, absoluteError)
	}

	var defaultPatterns []string
	if ignoreOptions.UseDefaultIgnores {
		defaultPatterns = DefaultIgnorePatterns
	}

	ignoreFilePatterns, ignoreLoadError := Load(absoluteRoot, fileNameOrDefault(ignoreOptions.FileName, utils.IgnoreFileName))
	if ignoreLoadError != nil {
		return Set{}, fmt.Errorf(errorLoadIgnoreFormat, absoluteRoot, ignoreLoadError)
	}
	customPatterns := append(ignoreFilePatterns, trimPatterns(ignoreOptions.ExtraPatterns)...)

	minifyFilePatterns, minifyLoadError := Load(absoluteRoot, fileNameOrDefault(minifyOptions.FileName, utils.MinifyFileName))
	if minifyLoadError != nil {
		return Set{}, fmt.Errorf(errorLoadMinifyFormat, absoluteRoot, minifyLoadError)
	}
	minifyPatterns := append(minifyFilePatterns, trimPatterns(minifyOptions.ExtraPatterns)...)

	return Set{
		Root:          absoluteRoot,
		DefaultIgnore: Compile(defaultPatterns),
		CustomIgnore:  Compile(customPatterns),
		Minify:        Compile(minifyPatterns),
	}, nil
}

// LoadSets compiles one Set per root, keyed by the root's absolute path.
func LoadSets(roots []string, ignoreOptions IgnoreOptions, minifyOptions MinifyOptions) (map[string]Set, error) {
	sets := make(map[string]Set, len(roots))
	for _, root := range roots {
		set, loadError := LoadSet(root, ignoreOptions, minifyOptions)
		if loadError != nil {
			return nil, loadError
		}
		sets[set.Root] = set
	}
	return sets, nil
}

func fileNameOrDefault(fileName, defaultName string) string {
	if strings.TrimSpace(fileName) == "" {
		return defaultName
	}
	return fileName
}

func trimPatterns(patternList []string) []string {
	trimmed := make([]string, 0, len(patternList))
	for _, pattern := range patternList {
		if value := strings.TrimSpace(pattern); value != "" {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}
