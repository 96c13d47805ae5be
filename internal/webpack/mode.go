package webpack

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMode indicates a build target outside dev, dll, test and dist
	ErrInvalidMode = errors.New("invalid build mode")
	// ErrInvalidFormat indicates an unsupported render format
	ErrInvalidFormat = errors.New("invalid render format")
)

// Mode is the build target the configuration is generated for.
type Mode int

const (
	ModeDev Mode = iota + 1
	ModeDLL
	ModeTest
	ModeDist
)

// Modes lists the recognized targets in their canonical order.
var Modes = []Mode{ModeDev, ModeDLL, ModeTest, ModeDist}

// ParseMode maps a target name to its Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "dev":
		return ModeDev, nil
	case "dll":
		return ModeDLL, nil
	case "test":
		return ModeTest, nil
	case "dist":
		return ModeDist, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeDev:
		return "dev"
	case ModeDLL:
		return "dll"
	case ModeTest:
		return "test"
	case ModeDist:
		return "dist"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the recognized targets.
func (m Mode) Valid() bool {
	return m >= ModeDev && m <= ModeDist
}

// NodeEnv is the process.env.NODE_ENV value defined for the target.
func (m Mode) NodeEnv() string {
	if m == ModeDist {
		return "production"
	}
	return m.String()
}
