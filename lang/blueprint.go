package lang

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// Blueprint is a parsed entity description. It is read-only once built and
// may be evaluated any number of times.
type Blueprint struct {
	Name   string
	Root   Entity
	Format Format
}

// Parse parses src as a blueprint in the given format.
func Parse(
	ctx context.Context,
	name string,
	format Format,
	src []byte,
	opts ...Option,
) (*Blueprint, error) {
	return parse(ctx, name, name, format, src, opts...)
}

// LoadBytes parses src as the contents of filename. The blueprint name and
// format are derived from filename.
func LoadBytes(
	ctx context.Context,
	filename string,
	src []byte,
	opts ...Option,
) (*Blueprint, error) {
	name := NameFromPath(filename)
	if name == "" {
		return nil, pkg.ErrCouldNotDetermineName.With(slog.String("path", filename))
	}

	format, ok := FormatForPath(filename)
	if !ok {
		return nil, pkg.ErrLoad.Wrap(
			pkg.ErrUnexpectedType.Args(filename, "blueprint file"),
		).With(slog.String("path", filename))
	}

	return parse(ctx, name, filename, format, src, opts...)
}

// LoadReader reads a blueprint named by filename from r.
func LoadReader(
	ctx context.Context,
	filename string,
	r io.Reader,
	opts ...Option,
) (*Blueprint, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrLoad.Wrap(err).With(slog.String("path", filename))
	}

	return LoadBytes(ctx, filename, src, opts...)
}

// LoadFile reads and parses the blueprint at path.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Blueprint, error) {
	if NameFromPath(path) == "" {
		return nil, pkg.ErrCouldNotDetermineName.With(slog.String("path", path))
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, pkg.ErrLoad.Wrap(err).With(slog.String("path", path))
	}

	return LoadBytes(ctx, path, src, opts...)
}

func parse(
	ctx context.Context,
	name, filename string,
	format Format,
	src []byte,
	opts ...Option,
) (*Blueprint, error) {
	var (
		root *Node
		err  error
	)

	switch format {
	case FormatJSON:
		root, err = decodeYAML(filename, src, true)
	case FormatYAML:
		root, err = decodeYAML(filename, src, false)
	case FormatHCL:
		root, err = decodeHCL(filename, src)
	default:
		return nil, pkg.ErrParse.Wrap(
			pkg.ErrUnexpectedType.Args(format.String(), "json, yaml or hcl"),
		)
	}

	if err != nil {
		return nil, err
	}

	opts = append(opts[:len(opts):len(opts)], withSource(src))

	ent, err := ParseEntity(ctx, root, opts...)
	if err != nil {
		return nil, err
	}

	makeOptions(opts...).logger.DebugContext(ctx, "blueprint parsed",
		slog.String("name", name),
		slog.String("format", format.String()),
		slog.Int("components", ent.Record().Len()))

	return &Blueprint{Name: name, Root: ent, Format: format}, nil
}

// Eval evaluates the blueprint into an entity record.
func (b *Blueprint) Eval(ctx context.Context, c *Context) (value.EntityRecord[value.Value], error) {
	rec, err := EvalToEntity(ctx, b.Root, c)
	if err != nil {
		return value.EntityRecord[value.Value]{}, pkg.WrapError(err).With(
			slog.String("blueprint", b.Name),
		)
	}

	return rec, nil
}
