package main

import "github.com/rawbytedev/docpack/cmd/docpack/cmd"

func main() {
	cmd.Execute()
}
