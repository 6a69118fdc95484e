package tokenizer

import (
	"math"

	"go.uber.org/zap"

	"github.com/tyemirov/digest/internal/types"
	"github.com/tyemirov/digest/internal/utils"
)

const (
	// MaxEstimateBytes bounds the text size that is tokenized; larger digests report Skipped.
	MaxEstimateBytes = 10 * 1024 * 1024
	// ClaudeTokenRatio converts the primary count into the Claude family estimate.
	// Measured on long English prose; expect roughly ±10%, worse for code or non-English text.
	ClaudeTokenRatio = 1.1
	// DerivedModelName labels the ratio-derived estimate.
	DerivedModelName = "claude"

	warningCountFailed = "Token estimation failed"
)

// Estimator computes a primary token count with a real tokenizer and derives a
// second model family's count through a fixed ratio.
type Estimator struct {
	counter      Counter
	primaryModel string
	ratio        float64
	logger       *zap.Logger
}

// NewEstimator wraps counter. A nil counter yields zero estimates.
func NewEstimator(counter Counter, primaryModel string, logger *zap.Logger) *Estimator {
	return &Estimator{
		counter:      counter,
		primaryModel: primaryModel,
		ratio:        ClaudeTokenRatio,
		logger:       utils.LoggerOrNop(logger),
	}
}

// Count returns the primary token count of text, or 0 when counting fails or text
// exceeds MaxEstimateBytes.
func (estimator *Estimator) Count(text string) int {
	if estimator == nil || estimator.counter == nil || len(text) > MaxEstimateBytes {
		return 0
	}
	tokens, countError := estimator.counter.CountString(text)
	if countError != nil {
		estimator.logger.Warn(warningCountFailed, zap.String("counter", estimator.counter.Name()), zap.Error(countError))
		return 0
	}
	return tokens
}

// Estimate scores text. Text above MaxEstimateBytes is not tokenized and reports Skipped.
func (estimator *Estimator) Estimate(text string) types.TokenEstimate {
	estimate := types.TokenEstimate{DerivedModel: DerivedModelName}
	if estimator != nil {
		estimate.PrimaryModel = estimator.primaryModel
	}
	if len(text) > MaxEstimateBytes {
		estimate.Skipped = true
		return estimate
	}
	estimate.PrimaryTokens = estimator.Count(text)
	estimate.DerivedTokens = estimator.derive(estimate.PrimaryTokens)
	return estimate
}

func (estimator *Estimator) derive(primaryTokens int) int {
	if estimator == nil || primaryTokens <= 0 {
		return 0
	}
	return int(math.Round(float64(primaryTokens) * estimator.ratio))
}
