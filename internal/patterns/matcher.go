package patterns

import (
	"path/filepath"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const pathSeparator = "/"

// Matcher evaluates root-relative paths against one ordered list of gitignore-style rules.
// Later rules override earlier ones, so a negation only re-includes what precedes it.
type Matcher struct {
	patterns []string
	compiled gitignore.Matcher
}

// Compile builds a Matcher over root-relative paths. An empty pattern list never matches.
func Compile(patternList []string) *Matcher {
	matcher := &Matcher{patterns: append([]string(nil), patternList...)}
	if len(matcher.patterns) > 0 {
		parsed := make([]gitignore.Pattern, 0, len(matcher.patterns))
		for _, pattern := range matcher.patterns {
			parsed = append(parsed, gitignore.ParsePattern(pattern, nil))
		}
		matcher.compiled = gitignore.NewMatcher(parsed)
	}
	return matcher
}

// Patterns returns a copy of the rules the matcher was compiled from.
func (matcher *Matcher) Patterns() []string {
	if matcher == nil {
		return nil
	}
	return append([]string(nil), matcher.patterns...)
}

// Empty reports whether the matcher holds no rules.
func (matcher *Matcher) Empty() bool {
	return matcher == nil || matcher.compiled == nil
}

// Matches reports whether relativePath (forward slashes, relative to the root) is matched.
// A file is matched when the file itself or any of its ancestor directories is matched;
// a file below an excluded directory cannot be re-included.
func (matcher *Matcher) Matches(relativePath string) bool {
	segments := matcher.segments(relativePath)
	if segments == nil {
		return false
	}
	for depth := 1; depth < len(segments); depth++ {
		if matcher.compiled.Match(segments[:depth], true) {
			return true
		}
	}
	return matcher.compiled.Match(segments, false)
}

// MatchesDirectory reports whether the directory at relativePath, or one of its ancestors, is matched.
func (matcher *Matcher) MatchesDirectory(relativePath string) bool {
	segments := matcher.segments(relativePath)
	for depth := 1; depth <= len(segments); depth++ {
		if matcher.compiled.Match(segments[:depth], true) {
			return true
		}
	}
	return false
}

func (matcher *Matcher) segments(relativePath string) []string {
	if matcher.Empty() {
		return nil
	}
	normalizedPath := strings.Trim(filepath.ToSlash(relativePath), pathSeparator)
	if normalizedPath == "" || normalizedPath == "." {
		return nil
	}
	return strings.Split(normalizedPath, pathSeparator)
}
