package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/buildinfo"
	"github.com/dmitrijs2005/todokeeper/internal/server"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)
	os.Exit(server.Main(context.Background()))
}
