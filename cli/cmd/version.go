package cmd

import (
	"fmt"
	"io"

	"github.com/robo-corg/prints/pkg"
)

// Version prints the module version.
type Version struct{}

// Run executes the version command.
func (Version) Run(out io.Writer) error {
	_, err := fmt.Fprintf(out, "%s %s\n", pkg.Name, pkg.Version())

	return err
}
