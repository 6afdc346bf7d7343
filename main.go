package main

import (
	"fmt"
	"os"

	"quillpost/app/cli"
)

const cliVersion = "1.0.0"

func main() {
	if err := cli.NewRootCommand(cliVersion).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
