// Package main is the entry point for the intercom CLI.
//
// Usage:
//
//	intercom [flags] <command> [args]
//
// Commands:
//
//	call     - Dial a peer over TCP or WebSocket and exchange audio
//	answer   - Wait for one peer to connect and exchange audio
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/opd-ai/intercom/cmd/intercom/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
