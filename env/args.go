package env

import (
	"log/slog"
	"strconv"

	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

func argError(fn string, i int, msg string) *pkg.Error {
	return pkg.ErrInvalidArgument.With(
		slog.String("function", fn),
		slog.Int("argument", i),
		slog.String("reason", msg),
	)
}

func arity(fn string, args []value.Value, lo, hi int) error {
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		want := strconv.Itoa(lo)

		switch {
		case hi < 0:
			want += " or more"
		case hi != lo:
			want += " to " + strconv.Itoa(hi)
		}

		return pkg.ErrInvalidArgument.With(
			slog.String("function", fn),
			slog.Int("got", len(args)),
			slog.String("want", want),
		)
	}

	return nil
}

func stringArg(fn string, args []value.Value, i int) (string, error) {
	s, ok := args[i].(value.String)
	if !ok {
		return "", argError(fn, i, "expected string, got "+args[i].TypeName())
	}

	return string(s), nil
}

// numberArg returns argument i as a float64 and reports whether it was an
// Int32.
func numberArg(fn string, args []value.Value, i int) (float64, bool, error) {
	switch n := args[i].(type) {
	case value.Int32:
		return float64(n), true, nil
	case value.Float32:
		return float64(n), false, nil
	}

	return 0, false, argError(fn, i, "expected number, got "+args[i].TypeName())
}
