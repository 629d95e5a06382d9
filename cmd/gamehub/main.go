package main

import "github.com/arcadelab/gamehub/internal/cli"

func main() {
	cli.Execute()
}
