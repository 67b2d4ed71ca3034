package util

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := &ValidationError{Errors: []string{"pool file is required"}}
		msg := err.Error()
		if !strings.Contains(msg, "pool file is required") {
			t.Errorf("Error message should contain the error: %s", msg)
		}
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidationError should unwrap to ErrValidationFailed")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := &ValidationError{Errors: []string{"--add and --sub", "--eth and --cname", "bad gateway"}}
		msg := err.Error()
		if !strings.Contains(msg, "--add") || !strings.Contains(msg, "--eth") || !strings.Contains(msg, "gateway") {
			t.Errorf("Error message should contain all errors: %s", msg)
		}
	})
}

func TestValidationBuilder(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		v := &ValidationBuilder{}
		v.Add(true, "this should not appear")
		v.Add(true, "neither should this")

		if v.HasErrors() {
			t.Error("Should not have errors when all conditions are true")
		}
		if err := v.Build(); err != nil {
			t.Errorf("Build() should return nil when no errors: %v", err)
		}
	})

	t.Run("with errors", func(t *testing.T) {
		v := &ValidationBuilder{}
		v.Add(false, "first error")
		v.Add(true, "this passes")
		v.Add(false, "second error")
		v.AddError("unconditional error")
		v.AddErrorf("formatted error: %d", 42)

		if !v.HasErrors() {
			t.Error("Should have errors")
		}

		err := v.Build()
		if err == nil {
			t.Fatal("Build() should return error")
		}

		validationErr, ok := err.(*ValidationError)
		if !ok {
			t.Fatalf("Expected *ValidationError, got %T", err)
		}
		if len(validationErr.Errors) != 4 {
			t.Errorf("Expected 4 errors, got %d", len(validationErr.Errors))
		}
	})

	t.Run("chaining", func(t *testing.T) {
		err := (&ValidationBuilder{}).
			Add(false, "error1").
			Add(false, "error2").
			AddErrorf("error%d", 3).
			Build()

		if err == nil {
			t.Fatal("Expected error")
		}
		if !strings.Contains(err.Error(), "error1") {
			t.Errorf("Missing error1 in: %s", err.Error())
		}
	})
}

func TestCommandError(t *testing.T) {
	err := &CommandError{Host: "10.0.0.5", Cmd: "nmcli connection reload", Status: 8, Stderr: "Error: not running\n"}
	msg := err.Error()
	for _, want := range []string{"10.0.0.5", "nmcli connection reload", "status 8", "Error: not running"} {
		if !strings.Contains(msg, want) {
			t.Errorf("CommandError message %q missing %q", msg, want)
		}
	}
	if strings.HasSuffix(msg, "\n") {
		t.Errorf("CommandError message should trim stderr: %q", msg)
	}
	if !errors.Is(err, ErrCommandFailed) {
		t.Error("CommandError should unwrap to ErrCommandFailed")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrInvalidConfig,
		ErrValidationFailed,
		ErrAllocationExhausted,
		ErrNothingToConfigure,
		ErrProfileResolution,
		ErrCommandFailed,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}
