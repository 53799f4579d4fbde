package main

import "github.com/agentic-research/treedex/cmd"

func main() {
	cmd.Execute()
}
