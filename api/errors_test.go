// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

package api_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/momentics/streamws/api"
)

func TestWrapErrorMatchesSentinel(t *testing.T) {
	err := api.WrapError(api.ErrCodeInvalidArgument, api.ErrInvalidArgument, "negative length")
	if !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("errors.Is(%v, ErrInvalidArgument) = false", err)
	}
	var detail *api.Error
	if !errors.As(err, &detail) || detail.Code != api.ErrCodeInvalidArgument {
		t.Errorf("errors.As detail = %+v, want ErrCodeInvalidArgument", detail)
	}
}

func TestErrorStringIncludesContext(t *testing.T) {
	err := api.NewError(api.ErrCodeInternal, "boom")
	if err.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", err.Error(), "boom")
	}
	err = err.WithContext("attempt", 3)
	if got := err.Error(); !strings.Contains(got, "attempt") {
		t.Errorf("Error() = %q, want the context key present", got)
	}
}

func TestWithContextOnZeroValue(t *testing.T) {
	// A hand-built Error has no context map until one is needed.
	err := (&api.Error{Code: api.ErrCodeInternal, Message: "boom"}).WithContext("k", "v")
	if err.Context["k"] != "v" {
		t.Errorf("Context = %+v, want k=v", err.Context)
	}
}
