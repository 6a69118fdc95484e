// Package transform turns classified files into Markdown fragments.
package transform

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	tripleBacktick        = "```"
	escapedTripleBacktick = "\\`\\`\\`"
	nullCharacter         = "\x00"
	replacementCharacter  = "\uFFFD"

	textFragmentFormat     = "# %s\n\n```%s\n%s\n```\n\n"
	binaryFragmentFormat   = "# %s\n\nThis is a binary file of the type: %s\n\n"
	svgFragmentFormat      = "# %s\n\nThis is a file of the type: %s\n\n"
	minifiedFragmentFormat = "# %s\n\nThis is a minified file of type: .%s. The file exists but has been excluded from the codebase digest.\n\n"
	skippedFragmentFormat  = "# %s\n\nThis file was skipped because it is %s, which exceeds the %s limit.\n\n"
	errorFragmentFormat    = "# %s\n\nError reading file: %s\n\n"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// whitespaceDependentExtensions lists languages where indentation or exact spacing carries meaning.
var whitespaceDependentExtensions = map[string]struct{}{
	".py":     {},
	".yaml":   {},
	".yml":    {},
	".pug":    {},
	".jade":   {},
	".haml":   {},
	".slim":   {},
	".coffee": {},
	".styl":   {},
	".gd":     {},
}

// IsWhitespaceDependent reports whether files with extension must keep their spacing.
func IsWhitespaceDependent(extension string) bool {
	_, dependent := whitespaceDependentExtensions[strings.ToLower(extension)]
	return dependent
}

// EscapeTripleBackticks escapes every ``` so embedded content cannot close the surrounding fence.
func EscapeTripleBackticks(content string) string {
	return strings.ReplaceAll(content, tripleBacktick, escapedTripleBacktick)
}

// RemoveWhitespace collapses every whitespace run to one space and trims the ends.
func RemoveWhitespace(content string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(content, " "))
}

// SanitizeText drops NUL bytes and replaces invalid UTF-8 sequences.
func SanitizeText(content string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(content, nullCharacter, ""), replacementCharacter)
}

// TextFragment formats the content of a text file as a fenced Markdown block.
// extension includes its leading dot; the fence info string omits it.
func TextFragment(displayPath, extension, content string, removeWhitespace bool) string {
	formattedContent := EscapeTripleBackticks(SanitizeText(content))
	if removeWhitespace && !IsWhitespaceDependent(extension) {
		formattedContent = RemoveWhitespace(formattedContent)
	}
	return fmt.Sprintf(textFragmentFormat, displayPath, strings.TrimPrefix(extension, "."), formattedContent)
}

// BinaryFragment formats the type note of a binary or SVG file.
func BinaryFragment(displayPath, typeName string, isSVG bool) string {
	if isSVG {
		return fmt.Sprintf(svgFragmentFormat, displayPath, typeName)
	}
	return fmt.Sprintf(binaryFragmentFormat, displayPath, typeName)
}

// SkippedFragment explains that a file was too large to read.
func SkippedFragment(displayPath, size, limit string) string {
	return fmt.Sprintf(skippedFragmentFormat, displayPath, size, limit)
}

// ErrorFragment records a file that could not be read.
func ErrorFragment(displayPath string, readError error) string {
	return fmt.Sprintf(errorFragmentFormat, displayPath, strings.TrimSpace(readError.Error()))
}
