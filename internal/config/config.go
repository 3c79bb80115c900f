// Package config loads the settings of the board, its relay and the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"CollabBoard/internal/draw"
)

// Below are the default values of the config.
const (
	DefaultWidth       = 300
	DefaultHeight      = 300
	DefaultLineWidth   = 4
	DefaultColor       = "41, 182, 246"
	DefaultOpacity     = 1
	DefaultFillOpacity = 0

	DefaultFrameInterval = 16 * time.Millisecond
	DefaultDivisor       = 50

	DefaultPort    = 8888
	DefaultPath    = "/ws"
	DefaultSession = "default"

	DefaultLogLevel = "info"
)

// Environment variables overriding the file.
const (
	EnvPort     = "COLLABBOARD_PORT"
	EnvRedisURL = "COLLABBOARD_REDIS_URL"
	EnvLogLevel = "COLLABBOARD_LOG_LEVEL"
)

var (
	// ErrInvalidSize is returned when the canvas has no area.
	ErrInvalidSize = errors.New("canvas width and height must be positive")

	// ErrInvalidMagnet is returned for a negative magnet step.
	ErrInvalidMagnet = errors.New("magnet must not be negative")

	// ErrInvalidOpacity is returned for opacities outside [0, 1].
	ErrInvalidOpacity = errors.New("opacity must be within [0, 1]")

	// ErrInvalidAnimation is returned for a bad frame interval or divisor.
	ErrInvalidAnimation = errors.New("invalid animation settings")

	// ErrInvalidServer is returned for a bad server section.
	ErrInvalidServer = errors.New("invalid server settings")
)

// Board holds the canvas and pen settings.
type Board struct {
	Width       int     `yaml:"Width"`
	Height      int     `yaml:"Height"`
	Magnet      float64 `yaml:"Magnet"`
	LineWidth   float64 `yaml:"LineWidth"`
	Color       string  `yaml:"Color"`
	Opacity     float64 `yaml:"Opacity"`
	FillOpacity float64 `yaml:"FillOpacity"`
	Centered    bool    `yaml:"Centered"`
}

// Pointer holds the pointer settings.
type Pointer struct {
	// Sensitivity overrides the threshold derived from the line width
	// when positive.
	Sensitivity float64 `yaml:"Sensitivity"`
}

// Animation holds the replay settings.
type Animation struct {
	// FrameInterval is the delay between two flushes, e.g. "16ms".
	FrameInterval string  `yaml:"FrameInterval"`
	Divisor       float64 `yaml:"Divisor"`
}

// Server holds the relay settings.
type Server struct {
	Port        int    `yaml:"Port"`
	Path        string `yaml:"Path"`
	Session     string `yaml:"Session"`
	Advertise   bool   `yaml:"Advertise"`
	RedisURL    string `yaml:"RedisURL"`
	MetricsAddr string `yaml:"MetricsAddr"`
}

// Config is the configuration of a board instance.
type Config struct {
	Board     Board     `yaml:"Board"`
	Pointer   Pointer   `yaml:"Pointer"`
	Animation Animation `yaml:"Animation"`
	Server    Server    `yaml:"Server"`
	LogLevel  string    `yaml:"LogLevel"`
}

// NewConfig returns a Config with the defaults.
func NewConfig() *Config {
	conf := &Config{}
	conf.ensureDefaultValue()
	return conf
}

// NewConfigFromFile reads the YAML file at path. Missing values get their
// defaults.
func NewConfigFromFile(path string) (*Config, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	conf := &Config{}
	if err := yaml.Unmarshal(b, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// ApplyEnv overrides the config with the environment.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv(EnvRedisURL); ok {
		c.Server.RedisURL = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return nil
}

// Validate returns an error if the config cannot drive a board.
func (c *Config) Validate() error {
	if c.Board.Width <= 0 || c.Board.Height <= 0 {
		return fmt.Errorf("%dx%d: %w", c.Board.Width, c.Board.Height, ErrInvalidSize)
	}
	if c.Board.Magnet < 0 {
		return fmt.Errorf("%v: %w", c.Board.Magnet, ErrInvalidMagnet)
	}
	for _, o := range []float64{c.Board.Opacity, c.Board.FillOpacity} {
		if o < 0 || o > 1 {
			return fmt.Errorf("%v: %w", o, ErrInvalidOpacity)
		}
	}

	interval, err := time.ParseDuration(c.Animation.FrameInterval)
	if err != nil {
		return fmt.Errorf("frame interval %q: %w", c.Animation.FrameInterval, ErrInvalidAnimation)
	}
	if interval <= 0 {
		return fmt.Errorf("frame interval %s: %w", interval, ErrInvalidAnimation)
	}
	if c.Animation.Divisor <= 0 {
		return fmt.Errorf("divisor %v: %w", c.Animation.Divisor, ErrInvalidAnimation)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d: %w", c.Server.Port, ErrInvalidServer)
	}
	if c.Server.Path == "" || c.Server.Path[0] != '/' {
		return fmt.Errorf("path %q: %w", c.Server.Path, ErrInvalidServer)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// FrameInterval returns the animation frame interval, or the default when
// it does not parse.
func (c *Config) FrameInterval() time.Duration {
	d, err := time.ParseDuration(c.Animation.FrameInterval)
	if err != nil || d <= 0 {
		return DefaultFrameInterval
	}
	return d
}

// DrawOptions returns the pen configured for new events.
func (c *Config) DrawOptions() draw.Options {
	return draw.Options{
		LineWidth:   c.Board.LineWidth,
		Color:       c.Board.Color,
		Opacity:     c.Board.Opacity,
		FillOpacity: c.Board.FillOpacity,
	}
}

func (c *Config) ensureDefaultValue() {
	if c.Board.Width == 0 {
		c.Board.Width = DefaultWidth
	}
	if c.Board.Height == 0 {
		c.Board.Height = DefaultHeight
	}
	if c.Board.LineWidth == 0 {
		c.Board.LineWidth = DefaultLineWidth
	}
	if c.Board.Color == "" {
		c.Board.Color = DefaultColor
	}
	if c.Board.Opacity == 0 {
		c.Board.Opacity = DefaultOpacity
	}

	if c.Animation.FrameInterval == "" {
		c.Animation.FrameInterval = DefaultFrameInterval.String()
	}
	if c.Animation.Divisor == 0 {
		c.Animation.Divisor = DefaultDivisor
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}
	if c.Server.Session == "" {
		c.Server.Session = DefaultSession
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
