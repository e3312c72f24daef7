package lang

import (
	"path/filepath"
	"strings"
)

// Format identifies a blueprint source syntax.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatHCL
)

var formatName = map[Format]string{
	FormatJSON: "json",
	FormatYAML: "yaml",
	FormatHCL:  "hcl",
}

// extensions maps each recognised file suffix to its format. Suffixes
// include the leading "bp." that marks a blueprint file.
var extensions = []struct {
	ext    string
	format Format
}{
	{"bp.json", FormatJSON},
	{"bp.yaml", FormatYAML},
	{"bp.yml", FormatYAML},
	{"bp.hcl", FormatHCL},
}

func (f Format) String() string {
	if s, ok := formatName[f]; ok {
		return s
	}

	return "unknown"
}

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatHCL}
}

// Extensions returns the recognised blueprint file suffixes, without the
// leading dot.
func Extensions() []string {
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = e.ext
	}

	return exts
}

// ParseFormat returns the format with the given name (json, yaml, yml, hcl).
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	case "hcl":
		return FormatHCL, true
	}

	return 0, false
}

// FormatForPath returns the format implied by the blueprint suffix of path.
func FormatForPath(path string) (Format, bool) {
	base := strings.ToLower(filepath.Base(path))

	for _, e := range extensions {
		if strings.HasSuffix(base, "."+e.ext) {
			return e.format, true
		}
	}

	return 0, false
}

// NameFromPath returns the blueprint name of path: its base name with the
// blueprint suffix removed. Unrecognised suffixes are left intact.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)

	for _, e := range extensions {
		if strings.HasSuffix(lower, "."+e.ext) {
			return base[:len(base)-len(e.ext)-1]
		}
	}

	if base == "." || base == string(filepath.Separator) {
		return ""
	}

	return base
}
