package lang

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"github.com/robo-corg/prints/pkg"
)

// ParseError reports a document that could not be turned into an
// expression tree. It matches [pkg.ErrParse] with [errors.Is].
type ParseError struct {
	Pos      Position
	Fragment string
	Msg      string

	// Source is the complete document, used to render a snippet. It may be
	// nil, in which case no snippet is shown.
	Source []byte

	// Err is the underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	var sb strings.Builder

	sb.WriteString("parse error at ")
	sb.WriteString(e.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(e.Msg)

	if e.Fragment != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Fragment)
	}

	if snippet := e.Snippet(); snippet != "" {
		sb.WriteByte('\n')
		sb.WriteString(snippet)
	}

	return sb.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{pkg.ErrParse}
	}

	return []error{pkg.ErrParse, e.Err}
}

func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Msg),
		slog.String("position", e.Pos.String()),
	}

	if e.Fragment != "" {
		attrs = append(attrs, slog.String("fragment", e.Fragment))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// Snippet renders the offending source line with a caret under the error
// column, or the empty string if the line is unavailable.
func (e *ParseError) Snippet() string {
	if len(e.Source) == 0 || e.Pos.Line < 1 {
		return ""
	}

	lines := bytes.Split(e.Source, []byte{'\n'})
	if e.Pos.Line > len(lines) {
		return ""
	}

	line := strings.TrimRight(string(lines[e.Pos.Line-1]), "\r")
	num := strconv.Itoa(e.Pos.Line)

	var sb strings.Builder

	sb.WriteString("  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(line)
	sb.WriteByte('\n')

	// 2 leading spaces + " | "
	pad := len(num) + 5
	if e.Pos.Column > 0 {
		pad += e.Pos.Column - 1
	}

	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteByte('^')

	return sb.String()
}

func parseErrorAt(o options, n *Node, msg string, cause error) *ParseError {
	return &ParseError{
		Pos:      n.Pos,
		Fragment: n.Fragment(),
		Msg:      msg,
		Source:   o.source,
		Err:      cause,
	}
}
