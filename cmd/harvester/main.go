package main

import "github.com/vietddude/harvester/internal/cli"

func main() {
	cli.Execute()
}
