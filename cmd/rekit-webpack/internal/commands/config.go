package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wlad-tk/rekit-clean-app/internal/logger"
	"github.com/wlad-tk/rekit-clean-app/internal/webpack"
)

type ConfigCmd struct {
	ProjectFlags `embed:""`

	Target string `arg:"" help:"build target" enum:"dev,dll,test,dist"`
	Format string `help:"output format" default:"js" enum:"js,json,yaml" env:"REKIT_FORMAT"`
	Out    string `help:"output file, - for stdout" default:"-" short:"o"`
}

func (c *ConfigCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	format, err := webpack.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	cfg, params, err := c.load(c.Target)
	if err != nil {
		return err
	}

	if c.Out == "-" {
		if err := webpack.Render(os.Stdout, cfg, format); err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
	} else if err := writeConfig(c.Out, cfg, format); err != nil {
		return err
	}

	log.Debug().
		Str("target", cfg.Mode.String()).
		Str("format", string(format)).
		Str("project", params.Package.Name).
		Int("plugins", len(cfg.Plugins)).
		Msg("Rendered config")

	return nil
}

func writeConfig(path string, cfg *webpack.Config, format webpack.Format) error {
	f, err := os.Create(path) // #nosec G304 - path from command line
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := webpack.Render(f, cfg, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to render config: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
