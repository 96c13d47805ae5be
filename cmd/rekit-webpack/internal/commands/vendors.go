package commands

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/wlad-tk/rekit-clean-app/internal/assets"
	"github.com/wlad-tk/rekit-clean-app/internal/webpack"
)

// vendorsDir holds the dev-vendors bundle the dev page loads.
const vendorsDir = ".tmp"

// ensureVendors builds the dll target into <root>/.tmp unless the bundle is
// already there. It reports whether a build ran.
func ensureVendors(params webpack.Params) (bool, error) {
	dir := filepath.Join(params.Root, vendorsDir)
	if _, err := os.Stat(filepath.Join(dir, "dev-vendors.js")); err == nil {
		return false, nil
	}

	cfg, err := webpack.Build(webpack.ModeDLL, params)
	if err != nil {
		return false, err
	}
	cfg.Output.Path = dir + string(filepath.Separator)
	cfg.Output.Filename = "[name].js"
	// the page belongs to the dev build
	cfg.Plugins = slices.DeleteFunc(cfg.Plugins, func(p webpack.Plugin) bool {
		return p.Name == webpack.PluginHTML
	})

	pipeline, err := assets.New(assets.Config{
		Webpack: cfg,
		Root:    params.Root,
		Title:   params.Package.Name,
	})
	if err != nil {
		return false, err
	}

	return true, pipeline.Build()
}
