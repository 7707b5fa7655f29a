// Package config loads the lathe settings file. TOML and YAML are both
// accepted; the extension selects the decoder.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Kernel names.
const (
	KernelLattice = "lattice"
	KernelSDFX    = "sdfx"
)

// ErrUnknownFormat is returned by Load for a file that is neither TOML nor
// YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Duration is a time.Duration that reads and writes as "5s", "250ms".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Generator holds the lattice resolution settings.
type Generator struct {
	WidthSegments  int `toml:"width_segments" yaml:"width_segments"`
	HeightSegments int `toml:"height_segments" yaml:"height_segments"`
	// MaxSegments caps what a scene may request per axis. Zero disables
	// the cap.
	MaxSegments int `toml:"max_segments" yaml:"max_segments"`
}

// SDF holds the marching cubes settings of the sdfx kernel.
type SDF struct {
	Cells int `toml:"cells" yaml:"cells"`
}

// Export holds the STL export settings.
type Export struct {
	Dir string `toml:"dir" yaml:"dir"`
}

// Config is the full settings file.
type Config struct {
	Kernel      string    `toml:"kernel" yaml:"kernel"`
	LogLevel    string    `toml:"log_level" yaml:"log_level"`
	EvalTimeout Duration  `toml:"eval_timeout" yaml:"eval_timeout"`
	Generator   Generator `toml:"generator" yaml:"generator"`
	SDF         SDF       `toml:"sdf" yaml:"sdf"`
	Export      Export    `toml:"export" yaml:"export"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Kernel:      KernelLattice,
		LogLevel:    "info",
		EvalTimeout: Duration(5 * time.Second),
		Generator: Generator{
			WidthSegments:  graph.DefaultWidthSegments,
			HeightSegments: graph.DefaultHeightSegments,
			MaxSegments:    1024,
		},
		SDF:    SDF{Cells: sdfx.DefaultMeshCells},
		Export: Export{Dir: "."},
	}
}

// Load reads path over the defaults and validates the result. Keys missing
// from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Kernel {
	case KernelLattice, KernelSDFX:
	default:
		errs = append(errs, fmt.Errorf("kernel %q must be %q or %q", c.Kernel, KernelLattice, KernelSDFX))
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level %q is not debug, info, warn or error", c.LogLevel))
	}
	if c.EvalTimeout <= 0 {
		errs = append(errs, fmt.Errorf("eval_timeout must be positive"))
	}
	g := c.Generator
	if g.WidthSegments < 1 || g.HeightSegments < 1 {
		errs = append(errs, fmt.Errorf("generator segments %d×%d must be at least 1", g.WidthSegments, g.HeightSegments))
	}
	if g.MaxSegments < 0 {
		errs = append(errs, fmt.Errorf("generator max_segments must not be negative"))
	}
	if g.MaxSegments > 0 && (g.WidthSegments > g.MaxSegments || g.HeightSegments > g.MaxSegments) {
		errs = append(errs, fmt.Errorf("generator segments %d×%d exceed max_segments %d", g.WidthSegments, g.HeightSegments, g.MaxSegments))
	}
	if c.SDF.Cells < 1 {
		errs = append(errs, fmt.Errorf("sdf cells must be at least 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Defaults returns the graph defaults every evaluation starts from.
func (c Config) Defaults() graph.GlobalDefaults {
	return graph.GlobalDefaults{
		WidthSegments:  c.Generator.WidthSegments,
		HeightSegments: c.Generator.HeightSegments,
	}
}
