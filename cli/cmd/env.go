package cmd

import (
	"context"
	"path/filepath"

	"github.com/robo-corg/prints/env"
	"github.com/robo-corg/prints/lang"
)

// funcSource is one named environment of the chain commands evaluate with.
type funcSource struct {
	name string
	env  lang.Environment
}

// environment builds the evaluation environment: the builtins, then the
// functions of each Starlark script in order, then the cty library.
func environment(ctx context.Context, scripts []string) (lang.Environment, []funcSource, error) {
	sources := []funcSource{{"builtin", env.Builtins()}}

	for _, path := range scripts {
		s, err := env.LoadStarlark(ctx, path)
		if err != nil {
			return nil, nil, err
		}

		sources = append(sources, funcSource{"starlark:" + filepath.Base(path), s})
	}

	sources = append(sources, funcSource{"cty", env.Cty(nil)})

	envs := make([]lang.Environment, len(sources))
	for i, s := range sources {
		envs[i] = s.env
	}

	return env.Chain(envs...), sources, nil
}
