package webpack

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func render(t *testing.T, mode Mode, format Format) []byte {
	t.Helper()

	cfg, err := Build(mode, testParams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, cfg, format))
	return buf.Bytes()
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"js", "json", "yaml"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		require.Equal(t, Format(name), f)
	}

	_, err := ParseFormat("toml")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestRender_json(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(render(t, ModeTest, FormatJSON), &doc))

	require.Equal(t, false, doc["devtool"])
	require.Contains(t, doc, "entry")
	require.Nil(t, doc["entry"])
	require.NotContains(t, doc, "Mode")

	rules := doc["module"].(map[string]any)["rules"].([]any)
	require.Len(t, rules, 7)
	first := rules[0].(map[string]any)
	require.Equal(t, `\.(js|jsx)$`, first["test"])
	require.Equal(t, `node_modules|build`, first["exclude"])
	require.NotContains(t, first, "Extensions")

	plugins := doc["plugins"].([]any)
	first = plugins[0].(map[string]any)
	require.Equal(t, PluginNoEmitOnErrors, first["name"])
	require.NotContains(t, first, "options")
}

func TestRender_jsonDev(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(render(t, ModeDev, FormatJSON), &doc))

	require.Equal(t, "eval", doc["devtool"])
	entry := doc["entry"].(map[string]any)
	require.Equal(t, "webpack-hot-middleware/client?http://0.0.0.0:6076", entry["index"].([]any)[1])

	scss := doc["module"].(map[string]any)["rules"].([]any)[2].(map[string]any)
	extract := scss["extract"].(map[string]any)
	require.Equal(t, "style-loader", extract["fallback"])
}

func TestRender_yaml(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(render(t, ModeDLL, FormatYAML), &doc))

	require.Equal(t, false, doc["devtool"])
	require.Equal(t, true, doc["cache"])
	entry := doc["entry"].(map[string]any)
	require.Len(t, entry["dev-vendors"], 12)

	output := doc["output"].(map[string]any)
	require.Equal(t, "js/[name].js", output["filename"])
	require.Equal(t, "/", output["publicPath"])
}

func TestRender_yamlTestEntryIsNull(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(render(t, ModeTest, FormatYAML), &doc))
	require.Contains(t, doc, "entry")
	require.Nil(t, doc["entry"])
}

func TestRender_js(t *testing.T) {
	out := string(render(t, ModeDist, FormatJS))

	require.Contains(t, out, "// Generated by rekit-webpack for the dist target.")
	require.Contains(t, out, "module.exports = config;")
	require.Contains(t, out, "'webpack.optimize.UglifyJsPlugin': webpack.optimize.UglifyJsPlugin,")
	require.Contains(t, out, "'HtmlWebpackPlugin': HtmlWebpackPlugin,")
	require.Contains(t, out, `"name": "webpack.optimize.CommonsChunkPlugin"`)
	require.Contains(t, out, `"NODE_ENV": "\"production\""`)
	require.Contains(t, out, `"test": "\\.scss$"`)
}

func TestRender_invalidFormat(t *testing.T) {
	cfg, err := Build(ModeDev, testParams())
	require.NoError(t, err)

	err = Render(&bytes.Buffer{}, cfg, Format("xml"))
	require.ErrorIs(t, err, ErrInvalidFormat)
}

// moduleConfig extracts the JSON document embedded in a rendered JS module.
func moduleConfig(t *testing.T, out string) map[string]any {
	t.Helper()

	start := strings.Index(out, "const config = ")
	require.NotEqual(t, -1, start)
	end := strings.Index(out, ";\n\nconfig.plugins = config.plugins.map(instantiate);")
	require.Greater(t, end, start)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[start+len("const config = "):end]), &doc))
	return doc
}

func TestRender_jsRevivalMarkers(t *testing.T) {
	tests := []struct {
		mode          Mode
		commonsChunk  bool
		loaderOptions bool
		sassLoader    string
	}{
		{mode: ModeDev, sassLoader: "sass-loader?sourceMap"},
		{mode: ModeDLL, sassLoader: "sass-loader"},
		{mode: ModeTest, sassLoader: "sass-loader"},
		{mode: ModeDist, commonsChunk: true, loaderOptions: true, sassLoader: "sass-loader"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			out := string(render(t, tt.mode, FormatJS))
			require.Contains(t, out, "config.module.rules = config.module.rules.map(rule);")
			doc := moduleConfig(t, out)

			rules := doc["module"].(map[string]any)["rules"].([]any)
			require.Len(t, rules, 7)
			for _, r := range rules {
				r := r.(map[string]any)
				_, err := regexp.Compile(r["test"].(string))
				require.NoError(t, err)
				if exclude, ok := r["exclude"]; ok {
					_, err := regexp.Compile(exclude.(string))
					require.NoError(t, err)
				}
			}

			for _, i := range []int{2, 3} {
				extract := rules[i].(map[string]any)["extract"].(map[string]any)
				require.Equal(t, "style-loader", extract["fallback"])
				require.NotEmpty(t, extract["use"])
			}
			sassUse := rules[2].(map[string]any)["extract"].(map[string]any)["use"].([]any)
			require.Equal(t, tt.sassLoader, sassUse[1].(map[string]any)["loader"])

			plugins := map[string]map[string]any{}
			for _, p := range doc["plugins"].([]any) {
				p := p.(map[string]any)
				name := p["name"].(string)
				require.Contains(t, out, "'"+name+"': "+name+",")
				opts, _ := p["options"].(map[string]any)
				plugins[name] = opts
			}

			commons, ok := plugins[PluginCommonsChunk]
			require.Equal(t, tt.commonsChunk, ok)
			if ok {
				require.Equal(t, map[string]any{"context": "node_modules"}, commons["minChunks"])
			}

			loaderOptions, ok := plugins[PluginLoaderOptions]
			require.Equal(t, tt.loaderOptions, ok)
			if ok {
				postcss := loaderOptions["options"].(map[string]any)["postcss"].([]any)
				prefixer := postcss[0].(map[string]any)["autoprefixer"].(map[string]any)
				require.Equal(t, []any{"last 3 version", "ie >= 10"}, prefixer["browsers"])
			}
		})
	}
}
