// Package main provides the dream voice assistant CLI.
//
// Usage:
//
//	dream [flags] <command> [args]
//
// Commands:
//
//	talk      - Talk to the assistant over the realtime socket
//	history   - Read and append the chat history
//	schedule  - Extract, set and list schedules
//	serve     - Run the function app
//	config    - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.dream/dream/
//	Use 'dream config' commands to manage contexts.
package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/salpyeo/dream/cmd/dream/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
