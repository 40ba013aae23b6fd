// Package cli provides the configuration and output plumbing of the
// voicematch command-line tool.
//
// This package includes:
//   - Configuration loading (YAML, flags override file values)
//   - Output formatting (YAML, JSON, styled tables)
//   - Standard locations for the config file and the enrollment registry
//
// Configuration lives in <user config dir>/voicematch/config.yaml. A
// missing file is not an error; defaults apply.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("")
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	})
package cli
