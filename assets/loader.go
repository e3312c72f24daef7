package assets

import (
	"context"

	"github.com/robo-corg/prints/lang"
)

// Loader parses the contents of an asset file.
type Loader interface {
	Load(ctx context.Context, path string, src []byte) (*lang.Blueprint, error)
}

// LoaderFunc adapts an ordinary function to [Loader].
type LoaderFunc func(ctx context.Context, path string, src []byte) (*lang.Blueprint, error)

func (f LoaderFunc) Load(ctx context.Context, path string, src []byte) (*lang.Blueprint, error) {
	return f(ctx, path, src)
}

// BlueprintLoader returns a loader for every blueprint syntax.
func BlueprintLoader(opts ...lang.Option) Loader {
	return LoaderFunc(func(ctx context.Context, path string, src []byte) (*lang.Blueprint, error) {
		return lang.LoadBytes(ctx, path, src, opts...)
	})
}
