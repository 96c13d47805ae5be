package webpack

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding for a rendered configuration.
type Format string

const (
	FormatJS   Format = "js"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a format name to its Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJS, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

//go:embed module.js.tmpl
var moduleTemplate string

var moduleTmpl = template.Must(template.New("module.js").Parse(moduleTemplate))

// constructors lists every plugin the generated module can instantiate.
var constructors = []string{
	PluginHotModuleReplacement,
	PluginNoEmitOnErrors,
	PluginLodashReplacement,
	PluginLoaderOptions,
	PluginUglifyJs,
	PluginExtractText,
	PluginBundleTracker,
	PluginModuleConcatenation,
	PluginOccurrenceOrder,
	PluginAggressiveMerging,
	PluginCommonsChunk,
	PluginHTML,
	PluginDefine,
}

// Render writes cfg to w in the given format.
func Render(w io.Writer, cfg *Config, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJS:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return moduleTmpl.Execute(w, map[string]any{
			"Mode":         cfg.Mode.String(),
			"Constructors": constructors,
			"JSON":         string(data),
		})
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}
