package main

import (
	"github.com/robotalks/iolink/pkg/cli/sh"
	"github.com/robotalks/iolink/pkg/config"

	_ "github.com/robotalks/iolink/pkg/cli/cmds/pins"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
