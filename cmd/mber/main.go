package main

import "github.com/mber/mber-go/internal/cli"

func main() {
	cli.Execute()
}
