package commands

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/wlad-tk/rekit-clean-app/internal/pkgmeta"
	"github.com/wlad-tk/rekit-clean-app/internal/webpack"
)

type Globals struct {
	Debug   bool
	Version string
}

// ProjectFlags locates the project the configuration is generated for.
type ProjectFlags struct {
	Package string `help:"path to package.json, its directory is the project root" default:"package.json" env:"REKIT_PACKAGE"`
}

func (f ProjectFlags) params() (webpack.Params, error) {
	pkg, err := pkgmeta.Load(f.Package)
	if err != nil {
		return webpack.Params{}, err
	}

	root, err := filepath.Abs(filepath.Dir(f.Package))
	if err != nil {
		return webpack.Params{}, fmt.Errorf("failed to resolve project root: %w", err)
	}

	return webpack.Params{Root: root, Package: pkg}, nil
}

// load parses the target and builds its configuration.
func (f ProjectFlags) load(target string) (*webpack.Config, webpack.Params, error) {
	mode, err := webpack.ParseMode(target)
	if err != nil {
		return nil, webpack.Params{}, err
	}

	params, err := f.params()
	if err != nil {
		return nil, webpack.Params{}, err
	}

	cfg, err := webpack.Build(mode, params)
	if err != nil {
		return nil, webpack.Params{}, err
	}

	return cfg, params, nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
