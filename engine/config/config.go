package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

type Application struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position, if applicable.
	PosX uint32 `toml:"pos_x"`
	PosY uint32 `toml:"pos_y"`
	// Window starting size.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type Renderer struct {
	Backend string `toml:"backend"`
	VSync   bool   `toml:"vsync"`
}

type Assets struct {
	// Relative asset paths are resolved against BasePath.
	BasePath       string `toml:"base_path"`
	HotReload      bool   `toml:"hot_reload"`
	PreloadWorkers int    `toml:"preload_workers"`
}

type Log struct {
	Level string `toml:"level"`
}

// Config is the engine configuration, usually read from config.toml.
type Config struct {
	Application Application `toml:"application"`
	Renderer    Renderer    `toml:"renderer"`
	Assets      Assets      `toml:"assets"`
	Log         Log         `toml:"log"`
}

func Default() *Config {
	return &Config{
		Application: Application{
			Name:   "sdengine",
			PosX:   100,
			PosY:   100,
			Width:  1280,
			Height: 720,
		},
		Renderer: Renderer{
			Backend: metadata.RendererTypeVulkan.String(),
			VSync:   true,
		},
		Assets: Assets{
			BasePath:       "assets",
			PreloadWorkers: assets.DefaultPreloadWorkers,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads and validates the file at path. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config '%s': %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config '%s': %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if !errors.As(err, &strict) {
			return nil, err
		}
		core.LogWarn("unknown configuration keys ignored:\n%s", strict.String())
		cfg = Default()
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Application.Name == "" {
		errs = append(errs, errors.New("application.name is required"))
	}
	if c.Application.Width == 0 || c.Application.Height == 0 {
		errs = append(errs, fmt.Errorf("application size %dx%d is invalid", c.Application.Width, c.Application.Height))
	}
	if _, err := metadata.ParseRendererType(c.Renderer.Backend); err != nil {
		errs = append(errs, err)
	}
	if c.Assets.PreloadWorkers < 0 {
		errs = append(errs, fmt.Errorf("assets.preload_workers must not be negative, got %d", c.Assets.PreloadWorkers))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("unknown log level '%s'", c.Log.Level))
	}
	return errors.Join(errs...)
}

// RendererType is the parsed backend. Call Validate first.
func (c *Config) RendererType() metadata.RendererType {
	t, _ := metadata.ParseRendererType(c.Renderer.Backend)
	return t
}
