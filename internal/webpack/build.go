// Package webpack builds the bundler configuration for each build target and
// renders it for the webpack CLI.
package webpack

import (
	"fmt"
	"path/filepath"
)

// Build returns a fresh configuration for the target. It fails with
// ErrInvalidMode for anything but the four recognized targets.
func Build(mode Mode, p Params) (*Config, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}

	devtool := Devtool("")
	if mode == ModeDev {
		devtool = DevtoolEval
	}

	return &Config{
		Mode:    mode,
		Devtool: devtool,
		Cache:   true,
		Context: filepath.Join(p.Root, "src"),
		Entry:   entry(mode, p),
		Output: Output{
			Filename:   "js/[name].js",
			Path:       dir(p.Root, "build"),
			PublicPath: "/",
		},
		Plugins: plugins(mode, p),
		Module:  Module{Rules: rules(mode)},
	}, nil
}

func entry(mode Mode, p Params) Entry {
	switch mode {
	case ModeDev:
		return Entry{
			"index": {
				"react-hot-loader/patch",
				fmt.Sprintf("webpack-hot-middleware/client?http://0.0.0.0:%d", p.Package.Rekit.DevPort),
				"./styles/index.scss",
				"./index",
			},
		}
	case ModeDLL:
		// only consumed by the dev target
		return Entry{
			"dev-vendors": {
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
			},
		}
	case ModeDist:
		return Entry{
			"index": {
				"babel-polyfill",
				"./styles/index.scss",
				"./index",
			},
		}
	default:
		return nil
	}
}
