package main

import "github.com/forPelevin/vsplit/internal/cli"

func main() {
	cli.Main()
}
