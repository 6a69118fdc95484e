package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/digest/internal/digest"
	"github.com/tyemirov/digest/internal/output"
	"github.com/tyemirov/digest/internal/tokenizer"
	"github.com/tyemirov/digest/internal/watch"
)

const (
	errorClipboardFormat    = "copy digest to clipboard: %w"
	infoCopiedToClipboard   = "Digest copied to clipboard"
	warningShutdownTimedOut = "Shutdown timed out while a rebuild was still writing"
	infoWatchStopped        = "Watch stopped"
)

func (app *application) newEstimator(model string) *tokenizer.Estimator {
	counter, resolvedModel, counterError := app.dependencies.newCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		app.logger.Warn(warningTokenizerUnavailable, zap.Error(counterError))
		return tokenizer.NewEstimator(nil, model, app.logger)
	}
	return tokenizer.NewEstimator(counter, resolvedModel, app.logger)
}

func (app *application) digestOptions(settings digestSettings) digest.Options {
	return digest.Options{
		Directories:      settings.inputs,
		OutputFilePath:   settings.outputPath,
		Ignore:           settings.ignore,
		Minify:           settings.minify,
		RemoveWhitespace: settings.removeWhitespace,
		Estimator:        app.newEstimator(settings.model),
		Logger:           app.logger,
	}
}

// runDigest builds and writes the digest once, or keeps rebuilding it in watch mode.
func (app *application) runDigest(ctx context.Context, command *cobra.Command, settings digestSettings) error {
	options := app.digestOptions(settings)
	build := func(buildContext context.Context) error {
		return app.buildOnce(buildContext, command, settings, options)
	}
	if !settings.watch {
		return build(ctx)
	}

	session, sessionError := watch.NewSession(watch.Config{
		Roots:             settings.inputs,
		OutputPath:        settings.outputPath,
		UseDefaultIgnores: settings.ignore.UseDefaultIgnores,
		Debounce:          settings.debounce,
		Rebuild:           build,
		Logger:            app.logger,
	})
	if sessionError != nil {
		return sessionError
	}
	runErrors := make(chan error, 1)
	go func() {
		runErrors <- session.Run(ctx)
	}()
	select {
	case runError := <-runErrors:
		return runError
	case <-ctx.Done():
		if !session.WaitIdle(watch.DefaultPollInterval, watch.DefaultMaxWait) {
			app.logger.Warn(warningShutdownTimedOut)
			return nil
		}
		app.logger.Info(infoWatchStopped)
		return <-runErrors
	}
}

func (app *application) buildOnce(ctx context.Context, command *cobra.Command, settings digestSettings, options digest.Options) error {
	assembled, assembleError := digest.AssembleDigestText(ctx, options)
	if assembleError != nil {
		return assembleError
	}
	if writeError := digest.WriteDigest(assembled.Content, settings.outputPath, assembled.Stats, app.logger); writeError != nil {
		return writeError
	}
	summaryOptions := output.SummaryOptions{
		ShowIncludedFiles: settings.showFiles.show,
		SortBySize:        settings.showFiles.sortBySize,
		Files:             assembled.Files,
	}
	if renderError := output.RenderSummary(command.OutOrStdout(), assembled.Stats, summaryOptions); renderError != nil {
		return renderError
	}
	if settings.clipboard {
		if copyError := app.dependencies.copier.Copy(assembled.Content); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
		app.logger.Info(infoCopiedToClipboard)
	}
	return nil
}

// runStats prints per-file sizes and token estimates without writing the digest.
func (app *application) runStats(ctx context.Context, command *cobra.Command, settings digestSettings, format string) error {
	report, reportError := digest.ComputeFileStatsOnly(ctx, app.digestOptions(settings))
	if reportError != nil {
		return reportError
	}
	return output.RenderFileStats(command.OutOrStdout(), format, report.Files, report.TotalTokens)
}
