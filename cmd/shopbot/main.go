// Command shopbot runs the online shop assistant.
package main

import "github.com/hupe1980/agentshop/internal/cli"

func main() {
	cli.Execute()
}
