package assets

import (
	"errors"

	"github.com/wlad-tk/rekit-clean-app/internal/webpack"
)

var (
	// ErrNoEntryPoints indicates the configuration declares no entry points
	ErrNoEntryPoints = errors.New("no entry points found")
	// ErrBuildFailed indicates esbuild reported errors
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrNotBuilt indicates metadata was requested before a successful build
	ErrNotBuilt = errors.New("assets not built yet, call Build() first")
	// ErrEntryNotFound indicates the entry has no output in the build metadata
	ErrEntryNotFound = errors.New("entrypoint not found in metadata")
)

type Config struct {
	// Bundler configuration to build
	Webpack *webpack.Config
	// Project directory, stats and favicon paths are relative to it
	Root string
	// Page title, usually the package name
	Title string
	// Whether to write gzip siblings for .js and .css outputs
	Precompress bool
}
