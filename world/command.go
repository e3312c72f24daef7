package world

import (
	"context"
	"errors"
	"log/slog"
)

// Command is deferred work applied to a [World] by [World.Flush].
type Command interface {
	Apply(ctx context.Context, w *World) error
}

// CommandFunc adapts an ordinary function to [Command].
type CommandFunc func(ctx context.Context, w *World) error

func (f CommandFunc) Apply(ctx context.Context, w *World) error { return f(ctx, w) }

// Commands is a FIFO queue of commands for one [World].
type Commands struct {
	world *World
	queue []Command
}

// Commands returns the world's command queue.
func (w *World) Commands() *Commands { return w.commands }

// Push queues cmd.
func (c *Commands) Push(cmd Command) *Commands {
	c.queue = append(c.queue, cmd)

	return c
}

// Spawn allocates an empty entity immediately so later commands can refer
// to it.
func (c *Commands) Spawn() Entity {
	return c.world.Spawn()
}

// Len returns the number of queued commands.
func (c *Commands) Len() int { return len(c.queue) }

// Flush applies queued commands in order, including commands queued while
// flushing. A failing command does not stop the rest; all errors are
// returned joined.
func (w *World) Flush(ctx context.Context) error {
	var errs []error

	applied := 0

	for len(w.commands.queue) > 0 {
		cmd := w.commands.queue[0]
		w.commands.queue = w.commands.queue[1:]

		if err := cmd.Apply(ctx, w); err != nil {
			w.logger.WarnContext(ctx, "command failed", slog.Any("error", err))

			errs = append(errs, err)
		}

		applied++
	}

	w.commands.queue = nil

	w.logger.DebugContext(ctx, "commands flushed",
		slog.Int("applied", applied),
		slog.Int("failed", len(errs)))

	return errors.Join(errs...)
}
