// Package pkgmeta loads the project metadata the bundler configuration
// depends on from package.json.
package pkgmeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidPackage indicates package.json is missing fields the build needs.
var ErrInvalidPackage = errors.New("invalid package metadata")

// Package is the subset of package.json used by the build.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rekit   Rekit  `json:"rekit"`
}

// Rekit holds the "rekit" section of package.json.
type Rekit struct {
	DevPort int `json:"devPort"`
}

// Load reads and validates the package.json at path.
func Load(path string) (Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Package{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes and validates package.json contents.
func Parse(data []byte) (Package, error) {
	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return Package{}, fmt.Errorf("failed to decode package.json: %w", err)
	}

	if err := pkg.Validate(); err != nil {
		return Package{}, err
	}

	return pkg, nil
}

func (p Package) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPackage)
	}
	if p.Rekit.DevPort < 1 || p.Rekit.DevPort > 65535 {
		return fmt.Errorf("%w: rekit.devPort %d out of range", ErrInvalidPackage, p.Rekit.DevPort)
	}
	return nil
}
