// Package cmd implements the prints subcommands.
//
// Each command is a kong command struct whose Run method receives the
// command context and the output writer bound by package cli.
package cmd
