package assets

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wlad-tk/rekit-clean-app/internal/webpack"
)

// entryNamespace holds the virtual modules standing in for multi-module entries.
const entryNamespace = "rekit-entry"

var handlerLoaders = map[webpack.HandlerKind]api.Loader{
	webpack.HandlerScript:     api.LoaderJSX,
	webpack.HandlerStylesheet: api.LoaderCSS,
	webpack.HandlerJSON:       api.LoaderJSON,
	webpack.HandlerAsset:      api.LoaderFile,
}

// Options translates a bundler configuration into esbuild build options.
func Options(cfg *webpack.Config) (api.BuildOptions, error) {
	if len(cfg.Entry) == 0 {
		return api.BuildOptions{}, fmt.Errorf("%w: %s target", ErrNoEntryPoints, cfg.Mode)
	}

	names := make([]string, 0, len(cfg.Entry))
	for name := range cfg.Entry {
		names = append(names, name)
	}
	slices.Sort(names)

	entryPoints := make([]api.EntryPoint, 0, len(names))
	for _, name := range names {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  entryNamespace + ":" + name,
			OutputPath: entryOutputPath(cfg.Output.Filename, name),
		})
	}

	loaders := map[string]api.Loader{}
	for _, rule := range cfg.Module.Rules {
		loader, ok := handlerLoaders[rule.Handler]
		if !ok {
			continue
		}
		for _, ext := range rule.Extensions {
			if _, seen := loaders[ext]; !seen {
				loaders[ext] = loader
			}
		}
	}

	opts := api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		AbsWorkingDir:       cfg.Context,
		Outdir:              cfg.Output.Path,
		PublicPath:          cfg.Output.PublicPath,
		ChunkNames:          "js/[name]-[hash]",
		AssetNames:          "assets/[name]-[hash]",
		Bundle:              true,
		Write:               true,
		Metafile:            true,
		Platform:            api.PlatformBrowser,
		Target:              api.ES2015,
		Format:              api.FormatIIFE,
		Loader:              loaders,
		Sourcemap:           cond(cfg.Devtool == webpack.DevtoolEval, api.SourceMapInline, api.SourceMapNone),
		Define:              define(cfg),
		LogLevel:            api.LogLevelSilent,
		Plugins:             []api.Plugin{entryPlugin(cfg)},
	}

	if cfg.HasPlugin(webpack.PluginUglifyJs) {
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
		opts.LegalComments = api.LegalCommentsNone
	}

	if cfg.HasPlugin(webpack.PluginModuleConcatenation) {
		opts.TreeShaking = api.TreeShakingTrue
	}

	if cfg.HasPlugin(webpack.PluginCommonsChunk) {
		opts.Splitting = true
		opts.Format = api.FormatESModule
	}

	return opts, nil
}

// entryOutputPath expands the output filename template for an entry and
// drops the extension, which esbuild appends itself.
func entryOutputPath(filename, name string) string {
	out := strings.ReplaceAll(filename, "[name]", name)
	return strings.TrimSuffix(out, filepath.Ext(out))
}

// define flattens the DefinePlugin options into dotted esbuild defines.
func define(cfg *webpack.Config) map[string]string {
	plugin, ok := cfg.Plugin(webpack.PluginDefine)
	if !ok {
		return nil
	}

	defines := map[string]string{}
	var walk func(prefix string, value any)
	walk = func(prefix string, value any) {
		switch v := value.(type) {
		case map[string]any:
			for k, child := range v {
				walk(prefix+"."+k, child)
			}
		case string:
			defines[prefix] = v
		default:
			defines[prefix] = fmt.Sprint(v)
		}
	}
	for k, v := range plugin.Options {
		walk(k, v)
	}
	return defines
}

// entryModule is the source of the virtual module for an entry: one import
// per module, in declaration order. Modules carrying a query are hot reload
// client shims with no esbuild counterpart.
func entryModule(modules []string) string {
	var sb strings.Builder
	for _, module := range modules {
		if strings.Contains(module, "?") {
			log.Debug().Str("module", module).Msg("Skipping hot reload shim")
			continue
		}
		sb.WriteString("import ")
		sb.WriteString(strconv.Quote(module))
		sb.WriteString(";\n")
	}
	return sb.String()
}

func entryPlugin(cfg *webpack.Config) api.Plugin {
	return api.Plugin{
		Name: entryNamespace,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + entryNamespace + ":"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, entryNamespace+":"),
						Namespace: entryNamespace,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: entryNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					modules, ok := cfg.Entry[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("%w: %s", ErrEntryNotFound, args.Path)
					}
					contents := entryModule(modules)
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: cfg.Context,
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

// page holds the HtmlWebpackPlugin options the pipeline honours.
type page struct {
	Template string
	Filename string
	Favicon  string
	Script   string
}

func (p page) templateName() string {
	return filepath.Base(p.Template)
}

func pageOptions(cfg *webpack.Config) (page, bool) {
	plugin, ok := cfg.Plugin(webpack.PluginHTML)
	if !ok {
		return page{}, false
	}

	str := func(key string) string {
		s, _ := plugin.Options[key].(string)
		return s
	}

	return page{
		Template: str("template"),
		Filename: cond(str("filename") != "", str("filename"), "index.html"),
		Favicon:  str("favicon"),
		Script:   str("script"),
	}, true
}

// statsFile returns the BundleTracker output path, if the plugin is active.
func statsFile(cfg *webpack.Config) (string, bool) {
	plugin, ok := cfg.Plugin(webpack.PluginBundleTracker)
	if !ok {
		return "", false
	}
	filename, _ := plugin.Options["filename"].(string)
	return filename, filename != ""
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
