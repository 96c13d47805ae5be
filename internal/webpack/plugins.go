package webpack

import (
	"fmt"
	"path/filepath"
)

// Plugin directive names, as resolved by the generated module.
const (
	PluginHotModuleReplacement = "webpack.HotModuleReplacementPlugin"
	PluginNoEmitOnErrors       = "webpack.NoEmitOnErrorsPlugin"
	PluginLodashReplacement    = "LodashModuleReplacementPlugin"
	PluginLoaderOptions        = "webpack.LoaderOptionsPlugin"
	PluginUglifyJs             = "webpack.optimize.UglifyJsPlugin"
	PluginExtractText          = "ExtractTextPlugin"
	PluginBundleTracker        = "BundleTracker"
	PluginModuleConcatenation  = "webpack.optimize.ModuleConcatenationPlugin"
	PluginOccurrenceOrder      = "webpack.optimize.OccurrenceOrderPlugin"
	PluginAggressiveMerging    = "webpack.optimize.AggressiveMergingPlugin"
	PluginCommonsChunk         = "webpack.optimize.CommonsChunkPlugin"
	PluginHTML                 = "HtmlWebpackPlugin"
	PluginDefine               = "webpack.DefinePlugin"
)

// DevVendorsScript is injected into the page for targets that rely on the
// prebuilt dev-vendors bundle.
const DevVendorsScript = "<script src='/.tmp/dev-vendors.js'></script>"

type flags struct {
	dev  bool
	dist bool
}

func always(flags) bool     { return true }
func devOnly(f flags) bool  { return f.dev }
func distOnly(f flags) bool { return f.dist }

type candidate struct {
	active func(flags) bool
	plugin Plugin
}

// plugins appends, in declaration order, every candidate whose predicate
// holds for the target.
func plugins(mode Mode, p Params) []Plugin {
	f := flags{dev: mode == ModeDev, dist: mode == ModeDist}

	htmlScript := DevVendorsScript
	if f.dist {
		htmlScript = ""
	}

	candidates := []candidate{
		{devOnly, Plugin{Name: PluginHotModuleReplacement}},
		{always, Plugin{Name: PluginNoEmitOnErrors}},
		{distOnly, Plugin{Name: PluginLodashReplacement}},
		{distOnly, Plugin{Name: PluginLoaderOptions, Options: map[string]any{
			"minimize": true,
			"debug":    false,
			"options": map[string]any{
				"postcss": []any{
					map[string]any{
						"autoprefixer": map[string]any{
							"browsers": []string{"last 3 version", "ie >= 10"},
						},
					},
				},
				"context": dir(p.Root, "src"),
			},
		}}},
		{distOnly, Plugin{Name: PluginUglifyJs, Options: map[string]any{
			"minimize": true,
			"compress": map[string]any{
				"warnings":     false,
				"screw_ie8":    true,
				"conditionals": true,
				"unused":       true,
				"comparisons":  true,
				"sequences":    true,
				"dead_code":    true,
				"evaluate":     true,
				"if_return":    true,
				"join_vars":    true,
			},
			"output": map[string]any{
				"comments": false,
			},
		}}},
		{always, Plugin{Name: PluginExtractText, Options: map[string]any{
			"allChunks": true,
			"filename":  "css/[name].[hash:8].min.css",
		}}},
		{distOnly, Plugin{Name: PluginBundleTracker, Options: map[string]any{
			"filename": "./build/webpack-stats.json",
		}}},
		{distOnly, Plugin{Name: PluginModuleConcatenation}},
		{distOnly, Plugin{Name: PluginOccurrenceOrder}},
		{distOnly, Plugin{Name: PluginAggressiveMerging}},
		{distOnly, Plugin{Name: PluginCommonsChunk, Options: map[string]any{
			"name":     "library",
			"filename": "js/library.[hash:8].js",
			// modules resolved from a directory containing node_modules
			"minChunks": map[string]any{"context": "node_modules"},
		}}},
		{always, Plugin{Name: PluginHTML, Options: map[string]any{
			"template": filepath.Join(p.Root, "src", "index.html"),
			"path":     "./build/",
			"filename": "index.html",
			"favicon":  "favicon.png",
			"script":   htmlScript,
		}}},
		{always, Plugin{Name: PluginDefine, Options: map[string]any{
			"process.env": map[string]any{
				"NODE_ENV": fmt.Sprintf("%q", mode.NodeEnv()),
			},
		}}},
	}

	out := make([]Plugin, 0, len(candidates))
	for _, c := range candidates {
		if c.active(f) {
			out = append(out, c.plugin)
		}
	}
	return out
}

// dir joins elem onto root and keeps the trailing separator.
func dir(root string, elem ...string) string {
	return filepath.Join(append([]string{root}, elem...)...) + string(filepath.Separator)
}
