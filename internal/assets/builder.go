package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

// Build runs esbuild with the translated settings, then writes the stats
// file, page and precompressed outputs the configuration asks for.
func (p *Pipeline) Build() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.options.EntryPointsAdvanced))
	for _, ep := range p.options.EntryPointsAdvanced {
		names = append(names, ep.OutputPath)
	}
	log.Info().Str("mode", p.config.Webpack.Mode.String()).Strs("entrypoints", names).Msg("Building assets")

	result := api.Build(p.options)

	for _, msg := range result.Warnings {
		log.Warn().Str("warning", msg.Text).Str("file", location(msg)).Msg("Build warning")
	}

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", msg.Text).Str("file", location(msg)).Msg("Build error")
		}
		return fmt.Errorf("%w: %d errors", ErrBuildFailed, len(result.Errors))
	}

	for _, file := range result.OutputFiles {
		log.Info().Str("file", file.Path).Int("bytes", len(file.Contents)).Msg("Built file")
	}

	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return err
	}
	p.metadata = &metadata

	if filename, ok := statsFile(p.config.Webpack); ok {
		path := filepath.Join(p.config.Root, filename)
		if err := writeFile(path, []byte(result.Metafile)); err != nil {
			return fmt.Errorf("failed to write stats file: %w", err)
		}
		log.Info().Str("file", path).Msg("Wrote stats file")
	}

	if err := p.loadTemplate(); err != nil {
		return err
	}

	if err := p.writePage(); err != nil {
		return err
	}

	if p.config.Precompress {
		if err := precompress(result.OutputFiles); err != nil {
			return fmt.Errorf("failed to precompress outputs: %w", err)
		}
	}

	return nil
}

// LoadScripts returns the ordered script and stylesheet URLs needed for the
// given entry.
func (p *Pipeline) LoadScripts(entry string) ([]string, []string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.loadScripts(entry)
}

func (p *Pipeline) loadScripts(entry string) ([]string, []string, error) {
	if p.metadata == nil {
		return nil, nil, ErrNotBuilt
	}

	want := filepath.Join(p.options.Outdir, entryOutputPath(p.config.Webpack.Output.Filename, entry)+".js")

	// Find the output file for this entry
	for outputPath, info := range p.metadata.Outputs {
		if p.absPath(outputPath) != want {
			continue
		}

		scripts := []string{p.url(outputPath)}
		styles := []string{}
		visited := map[string]bool{outputPath: true}
		if info.CSSBundle != "" {
			styles = append(styles, p.url(info.CSSBundle))
		}
		p.addDependencies(info, &scripts, visited)
		return scripts, styles, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
}

func (p *Pipeline) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.External || visited[imp.Path] {
			continue
		}
		visited[imp.Path] = true
		*scripts = append(*scripts, p.url(imp.Path))

		if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
			p.addDependencies(chunkInfo, scripts, visited)
		}
	}
}

// absPath resolves a metafile path, which is relative to the working directory.
func (p *Pipeline) absPath(path string) string {
	return filepath.Join(p.options.AbsWorkingDir, filepath.FromSlash(path))
}

// url maps a metafile path to the URL it is served from.
func (p *Pipeline) url(path string) string {
	rel, err := filepath.Rel(p.options.Outdir, p.absPath(path))
	if err != nil {
		rel = path
	}
	return p.options.PublicPath + filepath.ToSlash(rel)
}

// Handler returns an http.HandlerFunc that renders the page for the given entry
func (p *Pipeline) Handler(entry string, contextFn func(ctx context.Context) any) (http.HandlerFunc, error) {
	if p.tmpl == nil {
		return nil, errors.New("template not loaded, configuration has no page plugin")
	}

	if contextFn == nil {
		contextFn = func(ctx context.Context) any {
			return nil
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		defer p.mu.RUnlock()

		buf := new(bytes.Buffer)
		if err := p.render(buf, entry, contextFn(r.Context())); err != nil {
			log.Error().Err(err).Msg("Failed to render page")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			log.Warn().Err(err).Msg("Failed to write page")
		}
	}, nil
}

// PageEntry is the entry the page loads: index when present, otherwise the
// first entry by name.
func (p *Pipeline) PageEntry() string {
	names := make([]string, 0, len(p.config.Webpack.Entry))
	for name := range p.config.Webpack.Entry {
		if name == "index" {
			return name
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names[0]
}

func (p *Pipeline) render(w io.Writer, entry string, pageContext any) error {
	scripts, styles, err := p.loadScripts(entry)
	if err != nil {
		return err
	}

	pg, _ := pageOptions(p.config.Webpack)

	data := map[string]any{
		"Title":   p.config.Title,
		"Scripts": scripts,
		"Styles":  styles,
		"Module":  p.options.Format == api.FormatESModule,
		"Script":  template.HTML(pg.Script), //nolint:gosec
		"Favicon": p.faviconURL(pg),
		"Context": pageContext,
	}

	return p.tmpl.ExecuteTemplate(w, pg.templateName(), data)
}

func (p *Pipeline) faviconURL(pg page) string {
	if pg.Favicon == "" {
		return ""
	}
	return p.options.PublicPath + filepath.ToSlash(filepath.Base(pg.Favicon))
}

func (p *Pipeline) writePage() error {
	pg, ok := pageOptions(p.config.Webpack)
	if !ok {
		return nil
	}

	path := filepath.Join(p.options.Outdir, pg.Filename)
	f, err := create(path)
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	if err := p.render(f, p.PageEntry(), nil); err != nil {
		f.Close()
		return fmt.Errorf("failed to render page: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	log.Info().Str("file", path).Msg("Wrote page")

	if pg.Favicon == "" {
		return nil
	}

	icon, err := os.ReadFile(filepath.Join(p.config.Root, pg.Favicon))
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("favicon", pg.Favicon).Msg("Favicon not found, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	return writeFile(filepath.Join(p.options.Outdir, filepath.Base(pg.Favicon)), icon)
}

func precompress(files []api.OutputFile) error {
	for _, file := range files {
		switch filepath.Ext(file.Path) {
		case ".js", ".css":
		default:
			continue
		}

		f, err := create(file.Path + ".gz")
		if err != nil {
			return err
		}

		zw, err := gzip.NewWriterLevel(f, gzip.BestCompression)
		if err != nil {
			f.Close()
			return err
		}
		if _, err := zw.Write(file.Contents); err != nil {
			f.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Debug().Str("file", file.Path+".gz").Msg("Precompressed file")
	}
	return nil
}

func location(msg api.Message) string {
	if msg.Location == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", msg.Location.File, msg.Location.Line, msg.Location.Column)
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	return os.Create(path) // #nosec G304 - path derived from build configuration
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
