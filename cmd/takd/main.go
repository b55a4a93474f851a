package main

import "github.com/takulai/takd/internal/cli"

func main() {
	cli.Execute()
}
