// Package version exposes build metadata injected at compile time and a
// helper to attach a `version` subcommand to the CLI.
package version
