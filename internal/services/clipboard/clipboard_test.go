package clipboard

import (
	"errors"
	"testing"
)

func TestServiceCopyDelegatesToWriter(t *testing.T) {
	var copied string
	service := &Service{write: func(text string) error {
		copied = text
		return nil
	}}
	if err := service.Copy("# main.go\n"); err != nil {
		t.Fatalf("Copy error: %v", err)
	}
	if copied != "# main.go\n" {
		t.Fatalf("unexpected clipboard content %q", copied)
	}
}

func TestServiceCopyReportsFailures(t *testing.T) {
	writeFailure := errors.New("xclip missing")
	service := &Service{write: func(string) error { return writeFailure }}
	if err := service.Copy("text"); !errors.Is(err, writeFailure) {
		t.Fatalf("expected wrapped write failure, got %v", err)
	}

	unsupported := &Service{unsupported: true}
	if err := unsupported.Copy("text"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
