package main

import (
	"os"
)

func main() {
	root, shutdown := newRootCmd()
	err := root.Execute()
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}
