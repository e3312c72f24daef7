// Command prints checks, evaluates and spawns entity blueprints.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/robo-corg/prints/cli"
	"github.com/robo-corg/prints/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Run(ctx, os.Exit, os.Args[1:]...); err != nil {
		log.Error("run failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}
