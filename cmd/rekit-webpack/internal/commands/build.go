package commands

import (
	"context"
	"time"

	"github.com/wlad-tk/rekit-clean-app/internal/assets"
	"github.com/wlad-tk/rekit-clean-app/internal/logger"
)

type BuildCmd struct {
	ProjectFlags `embed:""`

	Target      string `arg:"" help:"build target" enum:"dev,dll,test,dist"`
	Precompress bool   `help:"write gzip siblings for .js and .css outputs" default:"false" env:"REKIT_PRECOMPRESS"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	cfg, params, err := c.load(c.Target)
	if err != nil {
		return err
	}

	log.Info().Str("version", globals.Version).Str("target", cfg.Mode.String()).Str("project", params.Package.Name).Msg("Starting build")

	pipeline, err := assets.New(assets.Config{
		Webpack:     cfg,
		Root:        params.Root,
		Title:       params.Package.Name,
		Precompress: c.Precompress,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	if err := pipeline.Build(); err != nil {
		return err
	}

	log.Info().Dur("duration", time.Since(started)).Str("output", cfg.Output.Path).Msg("Build complete")
	return nil
}
