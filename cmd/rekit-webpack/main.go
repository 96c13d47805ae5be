package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wlad-tk/rekit-clean-app/cmd/rekit-webpack/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Config  commands.ConfigCmd `cmd:"" help:"Print the webpack configuration for a target"`
		Build   commands.BuildCmd  `cmd:"" help:"Build a target with esbuild"`
		Serve   commands.ServeCmd  `cmd:"" help:"Serve a development build and rebuild on change"`
		Debug   bool               `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("rekit-webpack"),
		kong.Description("Bundler configuration for rekit apps."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
