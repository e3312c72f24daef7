package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/robo-corg/prints/assets"
	"github.com/robo-corg/prints/lang"
	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/registry"
	"github.com/robo-corg/prints/spawn"
	"github.com/robo-corg/prints/units"
	"github.com/robo-corg/prints/world"
)

// ErrOutsideRoot is returned for blueprint files outside the asset root.
var ErrOutsideRoot = pkg.NewError("%s is outside the asset root %s")

// Spawn loads blueprints into an asset server and spawns one entity per
// blueprint into a world with the example components registered.
type Spawn struct {
	Files    []string `arg:"" help:"Blueprint files under the asset root." name:"file" type:"existingfile"`
	Root     string   `default:"." help:"Asset root directory." type:"existingdir"`
	Starlark []string `help:"Starlark scripts defining extra functions." type:"existingfile"`
	MaxDepth int      `default:"100" help:"Maximum nesting depth."`
	Watch    bool     `help:"Respawn blueprints when their files change, until interrupted."`
}

// Run executes the spawn command.
func (s *Spawn) Run(ctx context.Context, out io.Writer) error {
	logger := log.Default()

	environ, _, err := environment(ctx, s.Starlark)
	if err != nil {
		return err
	}

	srv := assets.New(s.Root,
		assets.WithLogger(logger),
		assets.WithLangOptions(lang.WithMaxDepth(s.MaxDepth), lang.WithLogger(logger)),
	)

	reg := registry.New(registry.WithLogger(logger))
	if err := units.Register(reg); err != nil {
		return err
	}

	w := world.New(world.WithLogger(logger))
	units.RegisterTypes(w)

	spawner := spawn.New(srv, reg, environ,
		spawn.WithLogger(logger),
		spawn.WithEvalOptions(lang.WithMaxDepth(s.MaxDepth), lang.WithLogger(logger)),
	)

	entities := make(map[assets.Handle]world.Entity, len(s.Files))

	for _, file := range s.Files {
		rel, err := s.relative(file)
		if err != nil {
			return err
		}

		h, err := srv.Load(ctx, rel)
		if err != nil {
			return err
		}

		entities[h] = spawner.Spawn(ctx, w, h)
	}

	if err := w.Flush(ctx); err != nil {
		return err
	}

	for _, e := range w.Entities() {
		printEntity(out, w, e)
	}

	if !s.Watch {
		return nil
	}

	return srv.Watch(ctx, func(h assets.Handle, err error) {
		e, ok := entities[h]
		if !ok {
			return
		}

		if err != nil {
			fmt.Fprintf(out, "%s %s\n%v\n", failStyle.Render("FAIL"), e, err)

			return
		}

		spawner.Insert(w, e, h)

		if err := w.Flush(ctx); err != nil {
			logger.WarnContext(ctx, "respawn failed",
				slog.String("entity", e.String()),
				slog.Any("error", err))

			fmt.Fprintf(out, "%s %s\n%v\n", failStyle.Render("FAIL"), e, err)

			return
		}

		printEntity(out, w, e)
	})
}

// relative returns file, given relative to the working directory, as a
// path relative to the asset root.
func (s *Spawn) relative(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot.Args(file, s.Root)
	}

	return rel, nil
}

func printEntity(out io.Writer, w *world.World, e world.Entity) {
	name, _ := world.Get[units.Name](w, e)

	fmt.Fprintf(out, "%s %s\n", okStyle.Render(e.String()), pathStyle.Render(string(name)))

	for _, c := range w.Components(e) {
		fmt.Fprintf(out, "  %s %+v\n", typeStyle.Render(reflect.TypeOf(c).Name()+":"), c)
	}
}
