package main

import "image-tagger/internal/cli"

func main() {
	cli.Execute()
}
