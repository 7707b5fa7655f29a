package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/chazu/lathe/pkg/config"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

// defaultConfigFile is read when LATHE_CONFIG is unset and the file exists.
const defaultConfigFile = "lathe.toml"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetLogger(logging.New(os.Stderr, cfg.LogLevel))

	app := NewApp(cfg)
	err = wails.Run(&options.App{
		Title:  "Lathe",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logging.Logger().Error("wails run failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads LATHE_CONFIG, or lathe.toml when present, over the
// defaults.
func loadConfig() (config.Config, error) {
	path := os.Getenv("LATHE_CONFIG")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		path = defaultConfigFile
	}
	return config.Load(path)
}
