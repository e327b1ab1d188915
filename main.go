package main

import "github.com/purpose168/bazichat/internal/cmd"

func main() {
	cmd.Execute()
}
