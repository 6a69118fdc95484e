package tokenizer

import (
	"errors"
	"strings"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len(strings.Fields(input)), nil }

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) { return 0, errors.New("encoder unavailable") }

func TestEstimatePrimaryAndDerived(t *testing.T) {
	estimator := NewEstimator(testCounter{}, "gpt-4o", nil)
	estimate := estimator.Estimate(strings.Repeat("word ", 100))
	if estimate.Skipped {
		t.Fatalf("expected estimate to be computed")
	}
	if estimate.PrimaryTokens != 100 {
		t.Fatalf("expected 100 primary tokens, got %d", estimate.PrimaryTokens)
	}
	if estimate.DerivedTokens != 110 {
		t.Fatalf("expected 110 derived tokens, got %d", estimate.DerivedTokens)
	}
	if estimate.PrimaryModel != "gpt-4o" || estimate.DerivedModel != DerivedModelName {
		t.Fatalf("unexpected model labels: %+v", estimate)
	}
}

func TestEstimateSkipsOversizedText(t *testing.T) {
	estimator := NewEstimator(testCounter{}, "gpt-4o", nil)
	estimate := estimator.Estimate(strings.Repeat("a", MaxEstimateBytes+1))
	if !estimate.Skipped {
		t.Fatalf("expected oversized text to be skipped")
	}
	if estimate.PrimaryTokens != 0 || estimate.DerivedTokens != 0 {
		t.Fatalf("expected zero counts for skipped estimate, got %+v", estimate)
	}
}

func TestCountSkipsOversizedText(t *testing.T) {
	estimator := NewEstimator(testCounter{}, "gpt-4o", nil)
	if tokens := estimator.Count(strings.Repeat("a ", MaxEstimateBytes/2+1)); tokens != 0 {
		t.Fatalf("expected oversized text to count zero, got %d", tokens)
	}
	if tokens := estimator.Count("two words"); tokens != 2 {
		t.Fatalf("expected 2 tokens, got %d", tokens)
	}
}

func TestEstimateDegradesToZero(t *testing.T) {
	estimate := NewEstimator(failingCounter{}, "gpt-4o", nil).Estimate("some text")
	if estimate.Skipped || estimate.PrimaryTokens != 0 || estimate.DerivedTokens != 0 {
		t.Fatalf("expected zero estimate on counter failure, got %+v", estimate)
	}

	var nilEstimator *Estimator
	if nilEstimator.Count("text") != 0 {
		t.Fatalf("expected nil estimator to count zero")
	}
	if NewEstimator(nil, "", nil).Estimate("text").PrimaryTokens != 0 {
		t.Fatalf("expected nil counter to count zero")
	}
}

func TestOpenAICounterNilEncoding(t *testing.T) {
	if _, err := (openAICounter{}).CountString("hello"); !errors.Is(err, errNilEncoder) {
		t.Fatalf("expected nil encoder error, got %v", err)
	}
}
