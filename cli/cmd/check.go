package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/robo-corg/prints/lang"
	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
)

// ErrCheckFailed is returned by [Check] when any blueprint fails to parse.
var ErrCheckFailed = pkg.NewError("%d of %d blueprints failed")

// Check parses blueprints without evaluating them.
type Check struct {
	Files    []string `arg:"" help:"Blueprint files." name:"file" type:"existingfile"`
	MaxDepth int      `default:"100" help:"Maximum nesting depth."`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context, out io.Writer) error {
	failed := 0

	for _, path := range c.Files {
		bp, err := lang.LoadFile(ctx, path, lang.WithMaxDepth(c.MaxDepth))
		if err != nil {
			failed++

			log.DebugContext(ctx, "check failed",
				slog.String("file", path),
				slog.Any("error", err))

			fmt.Fprintf(out, "%s %s\n%v\n", failStyle.Render("FAIL"), pathStyle.Render(path), err)

			continue
		}

		fmt.Fprintf(out, "%s %s %s\n",
			okStyle.Render("ok"),
			pathStyle.Render(path),
			dimStyle.Render(fmt.Sprintf("(%s, %s, %d components)",
				bp.Name, bp.Format, bp.Root.Record().Len())),
		)
	}

	if failed > 0 {
		return ErrCheckFailed.Args(failed, len(c.Files))
	}

	return nil
}
