// pbhp runs the Pause Before Harm Protocol gate from the command line,
// as an inbox watcher, or as an MCP tool server.
package main

import "github.com/ppiankov/pbhp/internal/cli"

func main() {
	cli.Execute()
}
