package cli

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

func TestToggleFlagLiterals(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		initial   bool
		arguments []string
		expected  bool
	}{
		{name: "absent_keeps_default", initial: true, arguments: nil, expected: true},
		{name: "bare_flag_enables", initial: false, arguments: []string{"--watch"}, expected: true},
		{name: "equals_false", initial: true, arguments: []string{"--watch=false"}, expected: false},
		{name: "separate_no", initial: true, arguments: []string{"--watch", "no"}, expected: false},
		{name: "separate_on", initial: false, arguments: []string{"--watch", "on"}, expected: true},
		{name: "separate_zero", initial: true, arguments: []string{"--watch", "0"}, expected: false},
		{name: "uppercase_off", initial: true, arguments: []string{"--watch", "OFF"}, expected: false},
		{name: "input_after_bare_flag", initial: false, arguments: []string{"--watch", "src"}, expected: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "digest"}
			watchEnabled := testCase.initial
			registerBooleanFlag(command.Flags(), &watchEnabled, "watch", testCase.initial, "rebuild on change")
			if err := command.ParseFlags(normalizeBooleanFlagArguments(command, testCase.arguments)); err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if watchEnabled != testCase.expected {
				t.Fatalf("expected watch=%t, got %t", testCase.expected, watchEnabled)
			}
		})
	}
}

func TestToggleFlagRejectsUnknownLiteral(t *testing.T) {
	command := &cobra.Command{Use: "digest"}
	var clipboardEnabled bool
	registerBooleanFlag(command.Flags(), &clipboardEnabled, "clipboard", false, "copy digest")
	if err := command.ParseFlags([]string{"--clipboard=sometimes"}); err == nil {
		t.Fatalf("expected an error for an unknown toggle literal")
	}
}

func TestNormalizeBooleanFlagArgumentsCoversSubcommands(t *testing.T) {
	var force bool
	rootCommand := &cobra.Command{Use: "digest"}
	initCommand := &cobra.Command{Use: "init"}
	registerBooleanFlag(initCommand.Flags(), &force, "force", false, "overwrite")
	rootCommand.AddCommand(initCommand)

	normalized := normalizeBooleanFlagArguments(rootCommand, []string{"init", "--force", "off", "--", "--force", "on"})
	expected := []string{"init", "--force=off", "--", "--force", "on"}
	if !reflect.DeepEqual(normalized, expected) {
		t.Fatalf("expected %v, got %v", expected, normalized)
	}
}
