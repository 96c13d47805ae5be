package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wlad-tk/rekit-clean-app/internal/assets"
	httpmiddleware "github.com/wlad-tk/rekit-clean-app/internal/http"
	"github.com/wlad-tk/rekit-clean-app/internal/logger"
	"github.com/wlad-tk/rekit-clean-app/internal/webpack"
)

type ServeCmd struct {
	ProjectFlags `embed:""`

	Listen      string        `help:"HTTP server listen address, defaults to 0.0.0.0:<rekit.devPort>" default:"" env:"REKIT_LISTEN"`
	CORSOrigins []string      `help:"allowed CORS origins for asset requests" env:"REKIT_CORS_ORIGINS"`
	Debounce    time.Duration `help:"delay between a source change and the rebuild" default:"200ms" env:"REKIT_DEBOUNCE"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	cfg, params, err := c.load(webpack.ModeDev.String())
	if err != nil {
		return err
	}

	listen := c.Listen
	if listen == "" {
		listen = fmt.Sprintf("0.0.0.0:%d", params.Package.Rekit.DevPort)
	}

	if built, err := ensureVendors(params); err != nil {
		log.Warn().Err(err).Msg("Failed to build dev vendors, the page will load without them")
	} else if built {
		log.Info().Str("dir", filepath.Join(params.Root, vendorsDir)).Msg("Built dev vendors")
	}

	pipeline, err := assets.New(assets.Config{
		Webpack: cfg,
		Root:    params.Root,
		Title:   params.Package.Name,
	})
	if err != nil {
		return err
	}

	if err := pipeline.Build(); err != nil {
		return err
	}

	handler, err := c.handler(pipeline, cfg, params.Root, log)
	if err != nil {
		return err
	}

	rebuild := func() {
		if err := pipeline.Build(); err != nil {
			log.Error().Err(err).Msg("Rebuild failed")
			return
		}
		log.Info().Msg("Rebuild complete")
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watch(ctx, cfg.Context, c.Debounce, rebuild)
	}()

	srv := configureHTTPServer(listen, handler)
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("listen", listen).Str("version", globals.Version).Msg("Serving development build")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-watchErr:
		if err != nil {
			log.Error().Err(err).Msg("File watcher stopped")
		}
		<-ctx.Done()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down")
	return srv.Shutdown(shutdownCtx)
}

// handler serves build outputs, the prebuilt dev-vendors bundle and the page
// for every other path.
func (c *ServeCmd) handler(pipeline *assets.Pipeline, cfg *webpack.Config, root string, log zerolog.Logger) (http.Handler, error) {
	page, err := pipeline.Handler(pipeline.PageEntry(), nil)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	prefix := "/" + vendorsDir + "/"
	mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(filepath.Join(root, vendorsDir)))))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(cfg.Output.Path, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() && r.URL.Path != "/index.html" {
			http.ServeFile(w, r, name)
			return
		}
		page(w, r)
	})

	var h http.Handler = mux
	if len(c.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: c.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
		}).Handler(h)
	}

	return httpmiddleware.RequestLogger(log)(h), nil
}
