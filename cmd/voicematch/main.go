// Package main is the entry point for the voicematch CLI.
//
// Usage:
//
//	voicematch [flags] <command> [args]
//
// Commands:
//
//	verify    - Decide whether two clips come from the same speaker
//	embed     - Print the speaker embedding of a clip
//	features  - Print the feature matrix summary of a clip
//	matrix    - Pairwise similarity of many clips
//	stats     - Compute global normalization statistics over a manifest
//	batch     - Run the training data pipeline over a manifest
//	enroll    - Add labeled clips to the speaker registry
//	identify  - Find the closest enrolled speaker
//	speakers  - List or remove enrolled speakers
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/voicematch/cmd/voicematch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
