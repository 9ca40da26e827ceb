package main

import (
	"os"

	"github.com/rcarmo/go-glob/pkg/applets/glob"
	"github.com/rcarmo/go-glob/pkg/core"
)

func main() {
	stdio := core.DefaultStdio()
	os.Exit(glob.Run(stdio, os.Args[1:]))
}
