package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
	CSSBundle  string       `json:"cssBundle"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external"`
}

// Pipeline builds a bundler configuration with esbuild and renders the page
// that loads it.
type Pipeline struct {
	config   Config
	options  api.BuildOptions
	metadata *BuildMetadata
	tmpl     *template.Template
	mu       sync.RWMutex
}

// New creates a pipeline for the given configuration. The HTML template named
// by the configuration, if any, is parsed up front.
func New(config Config) (*Pipeline, error) {
	options, err := Options(config.Webpack)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:  config,
		options: options,
	}

	if err := p.loadTemplate(); err != nil {
		return nil, err
	}

	return p, nil
}

// loadTemplate parses the page template named by the configuration, if any.
// Build calls it again so template edits show up on rebuild.
func (p *Pipeline) loadTemplate() error {
	pg, ok := pageOptions(p.config.Webpack)
	if !ok {
		return nil
	}

	tmpl, err := template.New(pg.templateName()).Funcs(template.FuncMap{
		"marshal": marshal,
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}).ParseFiles(pg.Template)
	if err != nil {
		return fmt.Errorf("failed to parse page template: %w", err)
	}
	p.tmpl = tmpl
	return nil
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
