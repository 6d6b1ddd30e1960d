package main

import "github.com/vinhng/gatewatch/internal/cli"

func main() {
	cli.Execute()
}
