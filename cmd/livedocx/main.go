package main

import (
	"os"

	"github.com/zeptools/gw-livedocx/cmd/livedocx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
