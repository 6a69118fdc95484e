package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	showFilesFlagTypeName            = "mode"
	showFilesSortLiteral             = "sort"
	invalidShowFilesFlagValueMessage = "invalid show-output-files value '%s'; accepted values: true, false, sort"
)

// showFilesMode is the parsed --show-output-files value.
type showFilesMode struct {
	show       bool
	sortBySize bool
}

var (
	trueShowFilesLiterals = map[string]struct{}{
		"":     {},
		"true": {},
		"t":    {},
		"1":    {},
		"yes":  {},
		"y":    {},
	}
	falseShowFilesLiterals = map[string]struct{}{
		"false": {},
		"f":     {},
		"0":     {},
		"no":    {},
		"n":     {},
	}
)

func interpretShowFilesLiteral(input string) (showFilesMode, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == showFilesSortLiteral {
		return showFilesMode{show: true, sortBySize: true}, true
	}
	if _, matches := trueShowFilesLiterals[normalized]; matches {
		return showFilesMode{show: true}, true
	}
	if _, matches := falseShowFilesLiterals[normalized]; matches {
		return showFilesMode{}, true
	}
	return showFilesMode{}, false
}

type showFilesFlagValue struct {
	target *showFilesMode
}

func (value *showFilesFlagValue) Set(input string) error {
	if value == nil || value.target == nil {
		return fmt.Errorf(invalidShowFilesFlagValueMessage, input)
	}
	mode, ok := interpretShowFilesLiteral(input)
	if !ok {
		return fmt.Errorf(invalidShowFilesFlagValueMessage, input)
	}
	*value.target = mode
	return nil
}

func (value *showFilesFlagValue) String() string {
	if value == nil || value.target == nil || !value.target.show {
		return "false"
	}
	if value.target.sortBySize {
		return showFilesSortLiteral
	}
	return "true"
}

func (value *showFilesFlagValue) Type() string {
	return showFilesFlagTypeName
}

func registerShowFilesFlag(flagSet *pflag.FlagSet, target *showFilesMode) {
	if flagSet == nil || target == nil {
		return
	}
	*target = showFilesMode{}
	flagSet.Var(&showFilesFlagValue{target: target}, showOutputFilesFlagName, showOutputFilesFlagDescription)
	if lookup := flagSet.Lookup(showOutputFilesFlagName); lookup != nil {
		lookup.NoOptDefVal = "true"
	}
}

// normalizeShowFilesArguments rewrites "--show-output-files sort" into "--show-output-files=sort"
// so the optional value is not mistaken for a positional argument.
func normalizeShowFilesArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if current == "--"+showOutputFilesFlagName {
			nextIndex := index + 1
			if nextIndex < len(arguments) && !strings.HasPrefix(arguments[nextIndex], "-") {
				if _, ok := interpretShowFilesLiteral(arguments[nextIndex]); ok {
					normalized = append(normalized, fmt.Sprintf("--%s=%s", showOutputFilesFlagName, arguments[nextIndex]))
					index += 2
					continue
				}
			}
		}
		normalized = append(normalized, current)
		index++
	}
	return normalized
}
