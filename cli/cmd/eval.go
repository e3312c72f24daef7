package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/robo-corg/prints/lang"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// Eval evaluates a blueprint and prints the resulting component values.
type Eval struct {
	File     string   `arg:"" help:"Blueprint file." name:"file" type:"existingfile"`
	Output   string   `default:"yaml" enum:"yaml,json" help:"Output format." short:"o"`
	Starlark []string `help:"Starlark scripts defining extra functions." type:"existingfile"`
	MaxDepth int      `default:"100" help:"Maximum nesting depth."`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, out io.Writer) error {
	bp, err := lang.LoadFile(ctx, e.File, lang.WithMaxDepth(e.MaxDepth))
	if err != nil {
		return err
	}

	environ, _, err := environment(ctx, e.Starlark)
	if err != nil {
		return err
	}

	rec, err := bp.Eval(ctx, lang.NewContext(environ, lang.WithMaxDepth(e.MaxDepth)))
	if err != nil {
		return err
	}

	var data []byte

	switch e.Output {
	case "json":
		data, err = value.MarshalJSON(value.Entity(rec), "  ")
		data = append(data, '\n')
	default:
		data, err = value.MarshalYAML(ctx, value.Entity(rec))
	}

	if err != nil {
		return pkg.WrapError(err).With(slog.String("output", e.Output))
	}

	_, err = out.Write(data)

	return err
}
