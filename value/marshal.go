package value

import (
	"context"
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// MarshalYAML renders v as a YAML document. Entity records render as
// mappings keyed by component name.
func MarshalYAML(ctx context.Context, v Value, opts ...yaml.EncodeOption) ([]byte, error) {
	n, err := Native(v)
	if err != nil {
		return nil, err
	}

	return yaml.MarshalContext(ctx, n, opts...)
}

// MarshalJSON renders v as indented JSON. Entity records render as objects
// keyed by component name.
func MarshalJSON(v Value, indent string) ([]byte, error) {
	n, err := Native(v)
	if err != nil {
		return nil, err
	}

	if indent == "" {
		return json.Marshal(n)
	}

	return json.MarshalIndent(n, "", indent)
}
