package webpack

import (
	"encoding/json"
	"regexp"

	"github.com/wlad-tk/rekit-clean-app/internal/pkgmeta"
)

// Params carries the project inputs the configuration is computed from.
type Params struct {
	// Root is the project directory containing src/ and build/
	Root string
	// Package is the parsed package.json
	Package pkgmeta.Package
}

// Config mirrors the webpack configuration schema.
type Config struct {
	Mode    Mode     `json:"-" yaml:"-"`
	Devtool Devtool  `json:"devtool" yaml:"devtool"`
	Cache   bool     `json:"cache" yaml:"cache"`
	Context string   `json:"context" yaml:"context"`
	Entry   Entry    `json:"entry" yaml:"entry"`
	Output  Output   `json:"output" yaml:"output"`
	Plugins []Plugin `json:"plugins" yaml:"plugins"`
	Module  Module   `json:"module" yaml:"module"`
}

// Devtool is the source map policy. The empty value disables it and is
// encoded as false.
type Devtool string

const DevtoolEval Devtool = "eval"

func (d Devtool) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("false"), nil
	}
	return json.Marshal(string(d))
}

func (d Devtool) MarshalYAML() (any, error) {
	if d == "" {
		return false, nil
	}
	return string(d), nil
}

// Entry maps a bundle name to the ordered modules it starts from. A nil
// Entry is encoded as null.
type Entry map[string][]string

func (e Entry) MarshalYAML() (any, error) {
	if e == nil {
		return nil, nil
	}
	return map[string][]string(e), nil
}

type Output struct {
	// Bundle name, [name] is replaced by the entry key
	Filename string `json:"filename" yaml:"filename"`
	// Where build results are written
	Path string `json:"path" yaml:"path"`
	// Exposed asset path, the trailing slash is required
	PublicPath string `json:"publicPath" yaml:"publicPath"`
}

// Plugin is a named plugin directive with its constructor options.
type Plugin struct {
	Name    string         `json:"name" yaml:"name"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

type Module struct {
	Rules []Rule `json:"rules" yaml:"rules"`
}

// HandlerKind classifies what a rule does with the files it matches.
type HandlerKind int

const (
	HandlerScript HandlerKind = iota + 1
	HandlerAsset
	HandlerStylesheet
	HandlerJSON
)

// Rule is a module rule: files matching Test and not Exclude go through
// Loader, Use or Extract.
type Rule struct {
	Test    Pattern  `json:"test" yaml:"test"`
	Exclude Pattern  `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Loader  string   `json:"loader,omitempty" yaml:"loader,omitempty"`
	Use     []Loader `json:"use,omitempty" yaml:"use,omitempty"`
	Extract *Extract `json:"extract,omitempty" yaml:"extract,omitempty"`

	// Extensions handled by the rule, each matched by Test
	Extensions []string    `json:"-" yaml:"-"`
	Handler    HandlerKind `json:"-" yaml:"-"`
}

// Loader is one step of a loader chain.
type Loader struct {
	Loader  string         `json:"loader" yaml:"loader"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
	Query   map[string]any `json:"query,omitempty" yaml:"query,omitempty"`
}

// Extract routes a loader chain through the stylesheet extraction plugin.
type Extract struct {
	Fallback string   `json:"fallback" yaml:"fallback"`
	Use      []Loader `json:"use" yaml:"use"`
}

// Pattern is a regular expression source in the subset shared by Go and
// JavaScript.
type Pattern string

func (p Pattern) Regexp() (*regexp.Regexp, error) {
	return regexp.Compile(string(p))
}

// Plugin returns the first plugin directive with the given name.
func (c *Config) Plugin(name string) (Plugin, bool) {
	for _, p := range c.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return Plugin{}, false
}

// HasPlugin reports whether a plugin directive with the given name is active.
func (c *Config) HasPlugin(name string) bool {
	_, ok := c.Plugin(name)
	return ok
}

// Rule returns the first rule with the given handler kind.
func (c *Config) Rule(kind HandlerKind) (Rule, bool) {
	for _, r := range c.Module.Rules {
		if r.Handler == kind {
			return r, true
		}
	}
	return Rule{}, false
}
