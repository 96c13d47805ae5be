package webpack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wlad-tk/rekit-clean-app/internal/pkgmeta"
)

func testParams() Params {
	return Params{
		Root: filepath.FromSlash("/srv/app"),
		Package: pkgmeta.Package{
			Name:    "rekit-clean-app",
			Version: "0.1.0",
			Rekit:   pkgmeta.Rekit{DevPort: 6076},
		},
	}
}

func pluginNames(cfg *Config) []string {
	names := make([]string, 0, len(cfg.Plugins))
	for _, p := range cfg.Plugins {
		names = append(names, p.Name)
	}
	return names
}

func TestParseMode(t *testing.T) {
	for _, mode := range Modes {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		require.Equal(t, mode, parsed)
	}

	_, err := ParseMode("bogus-mode")
	require.ErrorIs(t, err, ErrInvalidMode)

	_, err = ParseMode("")
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestBuild_invalidMode(t *testing.T) {
	for _, mode := range []Mode{0, Mode(5), Mode(-1)} {
		cfg, err := Build(mode, testParams())
		require.ErrorIs(t, err, ErrInvalidMode)
		require.Nil(t, cfg)
	}
}

func TestBuild_entry(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected Entry
	}{
		{
			mode: ModeDev,
			expected: Entry{"index": {
				"react-hot-loader/patch",
				"webpack-hot-middleware/client?http://0.0.0.0:6076",
				"./styles/index.scss",
				"./index",
			}},
		},
		{
			mode: ModeDLL,
			expected: Entry{"dev-vendors": {
				"react-hot-loader",
				"react-proxy",
				"babel-polyfill",
				"lodash",
				"react",
				"react-dom",
				"react-router",
				"react-redux",
				"react-router-redux",
				"redux",
				"redux-logger",
				"redux-thunk",
			}},
		},
		{
			mode: ModeDist,
			expected: Entry{"index": {
				"babel-polyfill",
				"./styles/index.scss",
				"./index",
			}},
		},
		{
			mode:     ModeTest,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			cfg, err := Build(tt.mode, testParams())
			require.NoError(t, err)
			require.Equal(t, tt.expected, cfg.Entry)
		})
	}
}

func TestBuild_devtool(t *testing.T) {
	for _, mode := range Modes {
		cfg, err := Build(mode, testParams())
		require.NoError(t, err)
		if mode == ModeDev {
			require.Equal(t, DevtoolEval, cfg.Devtool)
		} else {
			require.Empty(t, cfg.Devtool)
		}
		require.True(t, cfg.Cache)
		require.Equal(t, mode, cfg.Mode)
	}
}

func TestBuild_paths(t *testing.T) {
	cfg, err := Build(ModeDist, testParams())
	require.NoError(t, err)

	sep := string(filepath.Separator)
	require.Equal(t, filepath.Join(testParams().Root, "src"), cfg.Context)
	require.Equal(t, "js/[name].js", cfg.Output.Filename)
	require.Equal(t, filepath.Join(testParams().Root, "build")+sep, cfg.Output.Path)
	require.Equal(t, "/", cfg.Output.PublicPath)
}

func TestBuild_plugins(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected []string
	}{
		{
			mode: ModeDev,
			expected: []string{
				PluginHotModuleReplacement,
				PluginNoEmitOnErrors,
				PluginExtractText,
				PluginHTML,
				PluginDefine,
			},
		},
		{
			mode: ModeDLL,
			expected: []string{
				PluginNoEmitOnErrors,
				PluginExtractText,
				PluginHTML,
				PluginDefine,
			},
		},
		{
			mode: ModeTest,
			expected: []string{
				PluginNoEmitOnErrors,
				PluginExtractText,
				PluginHTML,
				PluginDefine,
			},
		},
		{
			mode: ModeDist,
			expected: []string{
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
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			cfg, err := Build(tt.mode, testParams())
			require.NoError(t, err)
			require.Equal(t, tt.expected, pluginNames(cfg))

			for _, p := range cfg.Plugins {
				require.NotEmpty(t, p.Name)
			}
		})
	}
}

func TestBuild_hotReloadOnlyInDev(t *testing.T) {
	for _, mode := range Modes {
		cfg, err := Build(mode, testParams())
		require.NoError(t, err)
		require.Equal(t, mode == ModeDev, cfg.HasPlugin(PluginHotModuleReplacement), mode.String())
		require.Equal(t, mode == ModeDist, cfg.HasPlugin(PluginUglifyJs), mode.String())
	}
}

func TestBuild_definePlugin(t *testing.T) {
	tests := map[Mode]string{
		ModeDev:  `"dev"`,
		ModeDLL:  `"dll"`,
		ModeTest: `"test"`,
		ModeDist: `"production"`,
	}

	for mode, expected := range tests {
		cfg, err := Build(mode, testParams())
		require.NoError(t, err)

		define, ok := cfg.Plugin(PluginDefine)
		require.True(t, ok)
		env := define.Options["process.env"].(map[string]any)
		require.Equal(t, expected, env["NODE_ENV"])
	}
}

func TestBuild_htmlScript(t *testing.T) {
	for _, mode := range Modes {
		cfg, err := Build(mode, testParams())
		require.NoError(t, err)

		html, ok := cfg.Plugin(PluginHTML)
		require.True(t, ok)
		require.Equal(t, filepath.Join(testParams().Root, "src", "index.html"), html.Options["template"])
		if mode == ModeDist {
			require.Equal(t, "", html.Options["script"])
		} else {
			require.Equal(t, DevVendorsScript, html.Options["script"])
		}
	}
}

func TestBuild_stylesheetRule(t *testing.T) {
	dev, err := Build(ModeDev, testParams())
	require.NoError(t, err)
	dist, err := Build(ModeDist, testParams())
	require.NoError(t, err)

	devRule := dev.Module.Rules[2]
	require.Equal(t, Pattern(`\.scss$`), devRule.Test)
	require.Equal(t, "style-loader", devRule.Extract.Fallback)
	require.Equal(t, "css-loader", devRule.Extract.Use[0].Loader)
	require.Equal(t, false, devRule.Extract.Use[0].Options["minimize"])
	require.Equal(t, true, devRule.Extract.Use[0].Options["sourceMap"])
	require.Equal(t, "sass-loader?sourceMap", devRule.Extract.Use[1].Loader)

	distRule := dist.Module.Rules[2]
	require.Equal(t, true, distRule.Extract.Use[0].Options["minimize"])
	require.NotContains(t, distRule.Extract.Use[0].Options, "sourceMap")
	require.Equal(t, "sass-loader", distRule.Extract.Use[1].Loader)

	test, err := Build(ModeTest, testParams())
	require.NoError(t, err)
	require.Equal(t, distRule, test.Module.Rules[2])
}

func TestBuild_rules(t *testing.T) {
	cfg, err := Build(ModeDev, testParams())
	require.NoError(t, err)
	require.Len(t, cfg.Module.Rules, 7)

	tests := []Pattern{
		`\.(js|jsx)$`,
		`\.(ttf|eot|svg|woff)(\?v=[0-9]\.[0-9]\.[0-9])?$`,
		`\.scss$`,
		`\.css$`,
		`\.json$`,
		`\.(png|gif|jpe?g|svg)$`,
		`\.(eot|ttf|woff|woff2)$`,
	}
	for i, expected := range tests {
		require.Equal(t, expected, cfg.Module.Rules[i].Test)
	}

	for _, r := range cfg.Module.Rules {
		re, err := r.Test.Regexp()
		require.NoError(t, err)
		require.NotEmpty(t, r.Extensions)
		for _, ext := range r.Extensions {
			require.True(t, re.MatchString("file"+ext), "%s should match %s", r.Test, ext)
		}

		if r.Exclude != "" {
			_, err := r.Exclude.Regexp()
			require.NoError(t, err)
		}
	}

	script, ok := cfg.Rule(HandlerScript)
	require.True(t, ok)
	exclude, err := script.Exclude.Regexp()
	require.NoError(t, err)
	require.True(t, exclude.MatchString("/srv/app/node_modules/react/index.js"))
	require.False(t, exclude.MatchString("/srv/app/src/index.js"))
}

func TestBuild_freshConfigPerCall(t *testing.T) {
	a, err := Build(ModeDev, testParams())
	require.NoError(t, err)
	b, err := Build(ModeDev, testParams())
	require.NoError(t, err)

	a.Entry["index"][0] = "mutated"
	a.Plugins[0].Name = "mutated"
	require.Equal(t, "react-hot-loader/patch", b.Entry["index"][0])
	require.Equal(t, PluginHotModuleReplacement, b.Plugins[0].Name)
}
