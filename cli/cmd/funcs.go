package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/robo-corg/prints/env"
)

// Funcs lists the functions blueprints can call, grouped by environment in
// lookup order.
type Funcs struct {
	Starlark []string `help:"Starlark scripts defining extra functions." type:"existingfile"`
}

// Run executes the funcs command.
func (f *Funcs) Run(ctx context.Context, out io.Writer) error {
	_, sources, err := environment(ctx, f.Starlark)
	if err != nil {
		return err
	}

	for i, s := range sources {
		if i > 0 {
			fmt.Fprintln(out)
		}

		fmt.Fprintln(out, titleStyle.Render(s.name))

		for _, name := range env.Names(s.env) {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}

	return nil
}
