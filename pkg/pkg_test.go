package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "prints" {
		t.Errorf("Expected Name to be %q, got %q", "prints", Name)
	}
}

func TestVersion(t *testing.T) {
	v := Version()
	if v == "" {
		t.Fatal("Version must not be empty")
	}

	if strings.ContainsAny(v, " \t\n") {
		t.Errorf("Version must be trimmed, got %q", v)
	}
}

func TestError_IsSentinel(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		is   *Error
		not  *Error
	}{
		{"args", ErrUndefinedFunction.Args("rand"), ErrUndefinedFunction, ErrUnknownComponent},
		{"wrap", ErrLoad.Wrap(cause), ErrLoad, ErrParse},
		{"with", ErrParse.With(slog.Int("line", 3)), ErrParse, ErrLoad},
		{"chain", ErrToComponent.Wrap(ErrUnsupportedShape.Args()), ErrUnsupportedShape, ErrLoad},
		{"fmt wrapped", fmt.Errorf("outer: %w", ErrUnknownComponent.Args("Foo")), ErrUnknownComponent, ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.is) {
				t.Errorf("expected %v to match %v", tt.err, tt.is)
			}

			if errors.Is(tt.err, tt.not) {
				t.Errorf("expected %v not to match %v", tt.err, tt.not)
			}
		})
	}
}

func TestError_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrUndefinedFunction.Args("rand"), "Function `rand` not defined"},
		{ErrUnknownComponent.Args("Foo"), "Unknown component `Foo`"},
		{ErrUnexpectedType.Args("map", "entity"), "Unexpected type map, expected entity"},
		{ErrLoad.Wrap(errors.New("no such file")), "Error loading: no such file"},
		{WrapError(errors.New("plain")), "plain"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestError_WithDoesNotMutate(t *testing.T) {
	base := ErrParse.With(slog.String("file", "a.bp.yaml"))
	derived := base.With(slog.Int("line", 1))

	if len(base.Attrs()) != 1 {
		t.Errorf("base attrs mutated: %v", base.Attrs())
	}

	if len(derived.Attrs()) != 2 {
		t.Errorf("derived attrs = %v, want 2", derived.Attrs())
	}

	if len(ErrParse.Attrs()) != 0 {
		t.Errorf("sentinel attrs mutated: %v", ErrParse.Attrs())
	}
}

func TestSuggest(t *testing.T) {
	got := Suggest("Hitpnts", []string{"Name", "Hitpoints", "Attacks"})
	if len(got) == 0 || got[0] != "Hitpoints" {
		t.Errorf("Suggest(Hitpnts) = %v, want Hitpoints first", got)
	}

	if got := Suggest("", []string{"Name"}); len(got) != 0 {
		t.Errorf("Suggest(\"\") = %v, want none", got)
	}

	if got := Suggest("zzz", []string{"Name"}); len(got) != 0 {
		t.Errorf("Suggest(zzz) = %v, want none", got)
	}

	if got := Suggest("a", []string{"a", "ab", "abc", "abcd"}); len(got) > MaxSuggestions {
		t.Errorf("Suggest(a) returned %d candidates, limit is %d", len(got), MaxSuggestions)
	}
}
