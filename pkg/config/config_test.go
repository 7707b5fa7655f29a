package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, KernelLattice, cfg.Kernel)
	assert.Equal(t, 32, cfg.Generator.WidthSegments)
	assert.Equal(t, 16, cfg.Generator.HeightSegments)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.EvalTimeout))
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "lathe.toml", `
kernel = "sdfx"
log_level = "debug"
eval_timeout = "250ms"

[generator]
width_segments = 48

[sdf]
cells = 64
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, KernelSDFX, cfg.Kernel)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.EvalTimeout))
	assert.Equal(t, 48, cfg.Generator.WidthSegments)
	// Keys the file leaves out keep their defaults.
	assert.Equal(t, 16, cfg.Generator.HeightSegments)
	assert.Equal(t, 64, cfg.SDF.Cells)
	assert.Equal(t, ".", cfg.Export.Dir)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "lathe.yml", `
kernel: lattice
eval_timeout: 2s
generator:
  width_segments: 12
  height_segments: 6
  max_segments: 64
export:
  dir: /tmp/out
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, time.Duration(cfg.EvalTimeout))
	assert.Equal(t, Generator{WidthSegments: 12, HeightSegments: 6, MaxSegments: 64}, cfg.Generator)
	assert.Equal(t, "/tmp/out", cfg.Export.Dir)

	d := cfg.Defaults()
	assert.Equal(t, 12, d.WidthSegments)
	assert.Equal(t, 6, d.HeightSegments)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("unknown extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "lathe.ini", "kernel=sdfx"))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
	t.Run("bad toml", func(t *testing.T) {
		_, err := Load(writeFile(t, "lathe.toml", "kernel = "))
		assert.ErrorContains(t, err, "parsing")
	})
	t.Run("bad duration", func(t *testing.T) {
		_, err := Load(writeFile(t, "lathe.yaml", "eval_timeout: soon\n"))
		assert.Error(t, err)
	})
	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, "lathe.toml", "kernel = \"manifold\"\n"))
		assert.ErrorContains(t, err, "manifold")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"kernel", func(c *Config) { c.Kernel = "cgal" }, "kernel"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"timeout", func(c *Config) { c.EvalTimeout = 0 }, "eval_timeout"},
		{"segments", func(c *Config) { c.Generator.WidthSegments = 0 }, "at least 1"},
		{"negative max", func(c *Config) { c.Generator.MaxSegments = -1 }, "max_segments"},
		{"over max", func(c *Config) { c.Generator.MaxSegments = 8 }, "exceed"},
		{"cells", func(c *Config) { c.SDF.Cells = 0 }, "cells"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	t.Run("all problems reported", func(t *testing.T) {
		cfg := Default()
		cfg.Kernel = "cgal"
		cfg.SDF.Cells = 0
		err := cfg.Validate()
		assert.ErrorContains(t, err, "kernel")
		assert.ErrorContains(t, err, "cells")
	})
}

func TestDurationText(t *testing.T) {
	b, err := Duration(1500 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(b))

	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("3m")))
	assert.Equal(t, 3*time.Minute, time.Duration(d))
}
