package main

import (
	"os"

	"github.com/basil51/ai-school-sub003/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
