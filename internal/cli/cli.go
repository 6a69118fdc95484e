// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/digest/internal/config"
	"github.com/tyemirov/digest/internal/output"
	"github.com/tyemirov/digest/internal/services/clipboard"
	"github.com/tyemirov/digest/internal/tokenizer"
	"github.com/tyemirov/digest/internal/utils"
)

const (
	inputFlagName             = "input"
	inputFlagShorthand        = "i"
	outputFlagName            = "output"
	outputFlagShorthand       = "o"
	ignoreFileFlagName        = "ignore-file"
	minifyFileFlagName        = "minify-file"
	noDefaultIgnoresFlagName  = "no-default-ignores"
	whitespaceRemovalFlagName = "whitespace-removal"
	exclusionFlagName         = "exclude"
	exclusionFlagShorthand    = "e"
	showOutputFilesFlagName   = "show-output-files"
	modelFlagName             = "model"
	watchFlagName             = "watch"
	clipboardFlagName         = "clipboard"
	configFlagName            = "config"
	verboseFlagName           = "verbose"
	formatFlagName            = "format"
	globalFlagName            = "global"
	forceFlagName             = "force"
	versionTemplate           = "digest version: {{.Version}}\n"
	rootUse                   = "digest"
	rootShortDescription      = "aggregate a codebase into a single Markdown digest"
	rootLongDescription       = `digest walks one or more input directories and writes every file into one Markdown document.
Text files are embedded in fenced code blocks, binary and SVG files are described by type, and files
matching the minify file are replaced by a placeholder. Files matching the ignore file, the built-in
ignore list, or --exclude patterns are left out.`
	rootUsageExample = `  # Digest the current directory into codebase.md
  digest

  # Digest two directories, collapsing whitespace, and list the largest files
  digest -i api -i web --whitespace-removal --show-output-files sort

  # Rebuild on every change
  digest --watch -o context.md`
	statsUse                         = "stats"
	statsShortDescription            = "report per-file digest sizes and token estimates without writing"
	initUse                          = "init"
	initShortDescription             = "write a starter configuration file"
	inputFlagDescription             = "input directory (repeatable, default \".\")"
	outputFlagDescription            = "output file"
	ignoreFileFlagDescription        = "name of the per-directory ignore file"
	minifyFileFlagDescription        = "name of the per-directory minify file"
	noDefaultIgnoresFlagDescription  = "disable the built-in ignore patterns"
	whitespaceRemovalFlagDescription = "collapse whitespace in files whose language does not depend on it"
	exclusionFlagDescription         = "additional ignore pattern (repeatable)"
	showOutputFilesFlagDescription   = "list included files; pass \"sort\" to order them by size"
	modelFlagDescription             = "tokenizer model for the primary token estimate"
	watchFlagDescription             = "rebuild the digest whenever input files change"
	clipboardFlagDescription         = "copy the digest to the system clipboard"
	configFlagDescription            = "configuration file (default ./.digest.yaml)"
	verboseFlagDescription           = "log per-file decisions"
	formatFlagDescription            = "report format: raw or json"
	globalFlagDescription            = "write the global configuration instead of the local one"
	forceFlagDescription             = "overwrite an existing configuration file"
	invalidFormatMessage             = "invalid format value '%s'"
	configurationWrittenFormat       = "Configuration written to %s\n"
	warningTokenizerUnavailable      = "Tokenizer unavailable; token estimates will be zero"
)

// dependencies are the collaborators that tests replace.
type dependencies struct {
	copier     clipboard.Copier
	newCounter func(tokenizer.Config) (tokenizer.Counter, string, error)
	newLogger  func(verbose bool) (*zap.Logger, error)
}

func defaultDependencies() dependencies {
	return dependencies{
		copier:     clipboard.NewService(),
		newCounter: tokenizer.NewCounter,
		newLogger:  utils.NewLeveledApplicationLogger,
	}
}

// application carries state shared by the root command and its subcommands.
type application struct {
	dependencies  dependencies
	logger        *zap.Logger
	configPath    string
	verbose       bool
	configuration config.ApplicationConfiguration
}

// Execute runs the digest application until it finishes or ctx is canceled.
func Execute(ctx context.Context) error {
	rootCommand := createRootCommand(defaultDependencies())
	rootCommand.SetArgs(normalizeArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

func normalizeArguments(rootCommand *cobra.Command, arguments []string) []string {
	return normalizeBooleanFlagArguments(rootCommand, normalizeShowFilesArguments(arguments))
}

// createRootCommand builds the root Cobra command.
func createRootCommand(deps dependencies) *cobra.Command {
	app := &application{dependencies: deps, logger: zap.NewNop()}
	var flags digestFlags
	var showFiles showFilesMode
	var watchEnabled bool
	var clipboardEnabled bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Version:      utils.GetApplicationVersion(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepare(command)
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			_ = app.logger.Sync()
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			settings, settingsError := resolveDigestSettings(command, flags, app.configuration)
			if settingsError != nil {
				return settingsError
			}
			settings.showFiles = resolveShowFiles(command, showFiles, app.configuration)
			settings.watch = watchEnabled
			settings.clipboard = clipboardEnabled
			if !command.Flags().Changed(clipboardFlagName) {
				settings.clipboard = config.BoolOrDefault(app.configuration.Clipboard, false)
			}
			settings.debounce = app.configuration.Watch.Debounce
			return app.runDigest(command.Context(), command, settings)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &app.verbose, verboseFlagName, false, verboseFlagDescription)

	addDigestFlags(rootCommand, &flags)
	registerShowFilesFlag(rootCommand.Flags(), &showFiles)
	registerBooleanFlag(rootCommand.Flags(), &watchEnabled, watchFlagName, false, watchFlagDescription)
	registerBooleanFlag(rootCommand.Flags(), &clipboardEnabled, clipboardFlagName, false, clipboardFlagDescription)

	rootCommand.AddCommand(
		createStatsCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// prepare builds the logger and loads configuration files before any command runs.
func (app *application) prepare(command *cobra.Command) error {
	logger, loggerError := app.dependencies.newLogger(app.verbose)
	if loggerError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	app.logger = logger
	if command.Name() == initUse {
		return nil
	}
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configPath})
	if loadError != nil {
		return loadError
	}
	app.configuration = configuration
	return nil
}

// createStatsCommand returns the stats subcommand.
func createStatsCommand(app *application) *cobra.Command {
	var flags digestFlags
	var reportFormat string

	statsCommand := &cobra.Command{
		Use:   statsUse,
		Short: statsShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			formatLower := strings.ToLower(strings.TrimSpace(reportFormat))
			if formatLower != output.FormatRaw && formatLower != output.FormatJSON {
				return fmt.Errorf(invalidFormatMessage, reportFormat)
			}
			settings, settingsError := resolveDigestSettings(command, flags, app.configuration)
			if settingsError != nil {
				return settingsError
			}
			return app.runStats(command.Context(), command, settings, formatLower)
		},
	}
	addDigestFlags(statsCommand, &flags)
	statsCommand.Flags().StringVar(&reportFormat, formatFlagName, output.FormatRaw, formatFlagDescription)
	return statsCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var globalTarget bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			path, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, path)
			return writeError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &globalTarget, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
