package webpack

// rules returns the module rules. Only the scss rule depends on the target.
func rules(mode Mode) []Rule {
	return []Rule{
		{
			Test:    `\.(js|jsx)$`,
			Exclude: `node_modules|build`,
			Use: []Loader{{
				Loader: "babel-loader",
				Options: map[string]any{
					"compact":        true,
					"cacheDirectory": true,
					"plugins": []any{
						"transform-runtime",
						"transform-decorators-legacy",
						"transform-class-properties",
						"lodash",
					},
					"presets": []any{
						"react",
						"stage-0",
						[]any{"env", map[string]any{"targets": map[string]any{"node": 4}}},
					},
				},
			}},
			Extensions: []string{".js", ".jsx"},
			Handler:    HandlerScript,
		},
		{
			Test:       `\.(ttf|eot|svg|woff)(\?v=[0-9]\.[0-9]\.[0-9])?$`,
			Loader:     "file-loader",
			Extensions: []string{".ttf", ".eot", ".svg", ".woff"},
			Handler:    HandlerAsset,
		},
		{
			Test:       `\.scss$`,
			Exclude:    `node_modules`,
			Extract:    sassExtract(mode == ModeDev),
			Extensions: []string{".scss"},
			Handler:    HandlerStylesheet,
		},
		{
			Test:    `\.css$`,
			Exclude: `node_modules`,
			Extract: &Extract{
				Fallback: "style-loader",
				Use: []Loader{
					{Loader: "css-loader", Query: map[string]any{"modules": false}},
					{Loader: "postcss-loader"},
				},
			},
			Extensions: []string{".css"},
			Handler:    HandlerStylesheet,
		},
		{
			Test:       `\.json$`,
			Loader:     "json-loader",
			Extensions: []string{".json"},
			Handler:    HandlerJSON,
		},
		{
			Test:       `\.(png|gif|jpe?g|svg)$`,
			Loader:     "file-loader?name=[path][name].[ext]",
			Extensions: []string{".png", ".gif", ".jpg", ".jpeg", ".svg"},
			Handler:    HandlerAsset,
		},
		{
			Test:       `\.(eot|ttf|woff|woff2)$`,
			Loader:     "file-loader?hash=sha512&name=[path][hash].[ext]",
			Extensions: []string{".eot", ".ttf", ".woff", ".woff2"},
			Handler:    HandlerAsset,
		},
	}
}

func sassExtract(dev bool) *Extract {
	if dev {
		return &Extract{
			Fallback: "style-loader",
			Use: []Loader{
				{Loader: "css-loader", Options: map[string]any{
					"url":       false,
					"minimize":  false,
					"sourceMap": true,
				}},
				{Loader: "sass-loader?sourceMap"},
			},
		}
	}

	return &Extract{
		Fallback: "style-loader",
		Use: []Loader{
			{Loader: "css-loader", Options: map[string]any{
				"url":      false,
				"minimize": true,
			}},
			{Loader: "sass-loader"},
		},
	}
}
