package main

import "github.com/sketchkit/sketchkit/cli"

func main() {
	cli.Execute()
}
