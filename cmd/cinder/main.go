package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/cinderlang/cinder/internal/clicmd"
)

// placeholder values, replaced on build
var (
	version   = "0.1.0"
	buildDate = "unreleased"
)

func main() {
	c := clicmd.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
