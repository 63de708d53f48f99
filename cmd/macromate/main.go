package main

import "macromate/cmd/cli"

func main() {
	cli.Execute()
}
