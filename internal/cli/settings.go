package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tyemirov/digest/internal/config"
	"github.com/tyemirov/digest/internal/patterns"
	"github.com/tyemirov/digest/internal/utils"
)

const (
	defaultInputPath = "."

	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorPathMissingFormat reports a missing path.
	errorPathMissingFormat = "input directory '%s' does not exist"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNotDirectoryFormat reports an input that is a regular file.
	errorNotDirectoryFormat = "input '%s' is not a directory"
)

// digestFlags stores the flags shared by the root and stats commands.
type digestFlags struct {
	inputs            []string
	output            string
	ignoreFile        string
	minifyFile        string
	noDefaultIgnores  bool
	whitespaceRemoval bool
	exclusionPatterns []string
	model             string
}

// digestSettings is the resolved configuration of one invocation: explicit flags win over
// configuration files, which win over built-in defaults.
type digestSettings struct {
	inputs           []string
	outputPath       string
	ignore           patterns.IgnoreOptions
	minify           patterns.MinifyOptions
	removeWhitespace bool
	model            string
	showFiles        showFilesMode
	watch            bool
	clipboard        bool
	debounce         time.Duration
}

// addDigestFlags registers the input, pattern and tokenizer flags on the command.
func addDigestFlags(command *cobra.Command, flags *digestFlags) {
	command.Flags().StringArrayVarP(&flags.inputs, inputFlagName, inputFlagShorthand, nil, inputFlagDescription)
	command.Flags().StringVarP(&flags.output, outputFlagName, outputFlagShorthand, utils.DefaultOutputFileName, outputFlagDescription)
	command.Flags().StringVar(&flags.ignoreFile, ignoreFileFlagName, utils.IgnoreFileName, ignoreFileFlagDescription)
	command.Flags().StringVar(&flags.minifyFile, minifyFileFlagName, utils.MinifyFileName, minifyFileFlagDescription)
	registerBooleanFlag(command.Flags(), &flags.noDefaultIgnores, noDefaultIgnoresFlagName, false, noDefaultIgnoresFlagDescription)
	registerBooleanFlag(command.Flags(), &flags.whitespaceRemoval, whitespaceRemovalFlagName, false, whitespaceRemovalFlagDescription)
	command.Flags().StringArrayVarP(&flags.exclusionPatterns, exclusionFlagName, exclusionFlagShorthand, nil, exclusionFlagDescription)
	command.Flags().StringVar(&flags.model, modelFlagName, "", modelFlagDescription)
}

func resolveDigestSettings(command *cobra.Command, flags digestFlags, configuration config.ApplicationConfiguration) (digestSettings, error) {
	changed := command.Flags().Changed

	inputs := flags.inputs
	if !changed(inputFlagName) {
		inputs = configuration.Inputs
	}
	if len(inputs) == 0 {
		inputs = []string{defaultInputPath}
	}
	validatedInputs, validationError := resolveAndValidateDirectories(inputs)
	if validationError != nil {
		return digestSettings{}, validationError
	}

	outputPath := flags.output
	if !changed(outputFlagName) && configuration.Output != "" {
		outputPath = configuration.Output
	}
	absoluteOutput, absoluteError := filepath.Abs(outputPath)
	if absoluteError != nil {
		return digestSettings{}, fmt.Errorf(errorAbsolutePathFormat, outputPath, absoluteError)
	}

	ignoreFile := flags.ignoreFile
	if !changed(ignoreFileFlagName) && configuration.IgnoreFile != "" {
		ignoreFile = configuration.IgnoreFile
	}
	minifyFile := flags.minifyFile
	if !changed(minifyFileFlagName) && configuration.MinifyFile != "" {
		minifyFile = configuration.MinifyFile
	}

	useDefaultIgnores := !flags.noDefaultIgnores
	if !changed(noDefaultIgnoresFlagName) {
		useDefaultIgnores = config.BoolOrDefault(configuration.DefaultIgnores, true)
	}
	removeWhitespace := flags.whitespaceRemoval
	if !changed(whitespaceRemovalFlagName) {
		removeWhitespace = config.BoolOrDefault(configuration.WhitespaceRemoval, false)
	}
	exclusionPatterns := flags.exclusionPatterns
	if !changed(exclusionFlagName) {
		exclusionPatterns = configuration.Exclude
	}
	model := flags.model
	if !changed(modelFlagName) {
		model = configuration.Tokens.Model
	}

	return digestSettings{
		inputs:     validatedInputs,
		outputPath: absoluteOutput,
		ignore: patterns.IgnoreOptions{
			FileName:          ignoreFile,
			UseDefaultIgnores: useDefaultIgnores,
			ExtraPatterns:     utils.DeduplicatePatterns(exclusionPatterns),
		},
		minify:           patterns.MinifyOptions{FileName: minifyFile},
		removeWhitespace: removeWhitespace,
		model:            model,
	}, nil
}

func resolveShowFiles(command *cobra.Command, flagValue showFilesMode, configuration config.ApplicationConfiguration) showFilesMode {
	if command.Flags().Changed(showOutputFilesFlagName) {
		return flagValue
	}
	return showFilesMode{
		show:       config.BoolOrDefault(configuration.ShowOutputFiles, false),
		sortBySize: config.BoolOrDefault(configuration.SortBySize, false),
	}
}

// resolveAndValidateDirectories converts inputs to absolute form, drops duplicates and
// requires every input to be an existing directory.
func resolveAndValidateDirectories(inputs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var result []string
	for _, inputPath := range inputs {
		absolutePath, absolutePathError := filepath.Abs(inputPath)
		if absolutePathError != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		info, fileStatusError := os.Stat(cleanPath)
		if fileStatusError != nil {
			if os.IsNotExist(fileStatusError) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf(errorNotDirectoryFormat, inputPath)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, cleanPath)
	}
	return result, nil
}
