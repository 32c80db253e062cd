package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-aurora/internal/sequence"
)

type Matrix struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Gamma       float64 `yaml:"gamma"`
	LeftToRight bool    `yaml:"layout_left_to_right"`
}

type Render struct {
	FPS            int    `yaml:"fps"`
	PaletteSize    int    `yaml:"palette_size"`
	CuratedPalette int    `yaml:"curated_palette"`
	StartMode      string `yaml:"start_mode"`   // "pattern" | "paint"
	StartDrawer    string `yaml:"start_drawer"` // e.g. AlienBlob
	Seed           int64  `yaml:"seed"`         // 0 = clock
}

type SPI struct {
	Dev     string `yaml:"dev"`      // "" = first port
	SpeedHz int    `yaml:"speed_hz"` // WS281x bit rate, e.g. 800000
}

// Power limits the produced frames; all zero leaves frames untouched.
type Power struct {
	WhiteCap  float64 `yaml:"white_cap"`  // per-LED R+G+B cap in [0,3]
	ChannelMA float64 `yaml:"channel_ma"` // mA per channel at full scale
	BudgetMA  float64 `yaml:"budget_ma"`  // 0 = no global budget
	Knee      float64 `yaml:"knee"`
}

type Output struct {
	Driver      string `yaml:"driver"` // "serial" | "spi" | "sim"
	Device      string `yaml:"device"`
	Baud        int    `yaml:"baud"`
	FPS         int    `yaml:"fps"`
	StopGraceMs int    `yaml:"stop_grace_ms"`
	SPI         SPI    `yaml:"spi,omitempty"`
	Power       Power  `yaml:"power,omitempty"`
}

type Custom struct {
	Dir       string `yaml:"dir"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Matrix   Matrix            `yaml:"matrix"`
	Render   Render            `yaml:"render"`
	Output   Output            `yaml:"output"`
	Custom   Custom            `yaml:"custom"`
	Server   Server            `yaml:"server"`
	LogLevel string            `yaml:"log_level"`
	Playlist *sequence.Program `yaml:"playlist,omitempty"`
}

// Default returns the stock 32x18 serial matrix setup.
func Default() *Config {
	return &Config{
		Matrix: Matrix{Width: 32, Height: 18, Gamma: 2.5, LeftToRight: true},
		Render: Render{FPS: 40, PaletteSize: 4096, StartMode: "pattern", StartDrawer: "AlienBlob"},
		Output: Output{
			Driver:      "serial",
			Device:      "/dev/ttyACM0",
			Baud:        115200,
			FPS:         40,
			StopGraceMs: 1000,
			SPI:         SPI{SpeedHz: 800000},
		},
		Custom:   Custom{Dir: "custom_drawers", TimeoutMs: 50},
		Server:   Server{Addr: ":8080"},
		LogLevel: "info",
	}
}

// Load reads path over the defaults; keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Matrix.Width <= 0 || c.Matrix.Height <= 0:
		return fmt.Errorf("matrix size %dx%d", c.Matrix.Width, c.Matrix.Height)
	case c.Matrix.Gamma <= 0:
		return fmt.Errorf("gamma %v must be positive", c.Matrix.Gamma)
	case c.Render.FPS <= 0 || c.Output.FPS <= 0:
		return fmt.Errorf("fps must be positive")
	case c.Render.PaletteSize <= 0:
		return fmt.Errorf("palette_size %d", c.Render.PaletteSize)
	case c.Output.Power.WhiteCap < 0 || c.Output.Power.BudgetMA < 0:
		return fmt.Errorf("power limits must not be negative")
	}
	switch c.Output.Driver {
	case "serial", "spi", "sim":
	default:
		return fmt.Errorf("unknown output driver %q", c.Output.Driver)
	}
	return nil
}

func (c *Config) StopGrace() time.Duration {
	return time.Duration(c.Output.StopGraceMs) * time.Millisecond
}

func (c *Config) CustomTimeout() time.Duration {
	return time.Duration(c.Custom.TimeoutMs) * time.Millisecond
}
