package main

import "seppy/internal/cli"

func main() {
	cli.Execute()
}
