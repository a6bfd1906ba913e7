// Package cmd provides CLI commands for Scout.
//
// Commands:
//   - serve: HTTP API server with the embedded chat UI
//   - version: build information
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"os"
)

// Execute is the main entry point for the Scout CLI application.
func Execute() error {
	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Scout - chat agent with web, encyclopedia, and paper search")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scout serve        Start the HTTP server (default: :8080)")
	fmt.Println("  scout --version    Show version information")
	fmt.Println("  scout --help       Show this help")
	fmt.Println()
	fmt.Println("API keys are supplied per session through the web UI or the")
	fmt.Println("JSON API, never through configuration or the environment.")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  ~/.scout/config.yaml   Optional config file")
	fmt.Println("  SCOUT_*                Environment overrides (e.g. SCOUT_ADDR)")
}
