package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robo-corg/prints/cli/cmd"
	"github.com/robo-corg/prints/pkg"
)

// CLI is the top-level command-line interface for prints.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Check   cmd.Check   `cmd:"" help:"Parse blueprints and report errors."`
	Eval    cmd.Eval    `cmd:"" help:"Evaluate a blueprint and print its components."`
	Spawn   cmd.Spawn   `cmd:"" help:"Spawn blueprints into a world and print the entities."`
	Funcs   cmd.Funcs   `cmd:"" help:"List the functions available to blueprints."`
	Version cmd.Version `cmd:"" help:"Print the version."`
}

// Run executes the prints CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon
// completion.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	return run(ctx, exit, os.Stdout, args...)
}

func run(ctx context.Context, exit func(code int), out io.Writer, args ...string) error {
	var cli CLI

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logging flags take effect before anything else is parsed.
	cli.Log.scan(args)

	cfg, err := loadConfig(configPath(), pkg.EnvPrefix())
	if err != nil {
		return err
	}

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(out, os.Stderr),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(out, (*io.Writer)(nil)),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Resolvers(cfg),
		cli.Log.vars(),
		cli.Pprof.vars(),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	// No-op unless built with the pprof tag and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
