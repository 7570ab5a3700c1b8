package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "vsplit.toml"

type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	// TimeoutSeconds bounds every ffmpeg/ffprobe call; 0 disables the bound.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type Processing struct {
	// Workers is the crop pool size; 0 means one per CPU.
	Workers             int  `toml:"workers"`
	AbortOnSegmentError bool `toml:"abort_on_segment_error"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Tools      Tools      `toml:"tools"`
	Processing Processing `toml:"processing"`
	Logging    Logging    `toml:"logging"`
	PickerDir  string     `toml:"picker_dir"`
}

func Default() Config {
	return Config{
		Tools:   Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe"},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.Tools.TimeoutSeconds) * time.Second
}

// Load returns defaults overlaid with the TOML file at path. An empty path
// falls back to DefaultFile and tolerates its absence; an explicit path must
// exist. The boolean reports whether a file was read.
func Load(path string) (Config, bool, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, false, nil
		}
		return Config{}, false, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, true, nil
}

// ApplyEnv overlays VSPLIT_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("VSPLIT_FFMPEG")); v != "" {
		c.Tools.FFmpeg = v
	}
	if v := strings.TrimSpace(getenv("VSPLIT_FFPROBE")); v != "" {
		c.Tools.FFprobe = v
	}
	if v := strings.TrimSpace(getenv("VSPLIT_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VSPLIT_WORKERS: %w", err)
		}
		c.Processing.Workers = n
	}
	if v := strings.TrimSpace(getenv("VSPLIT_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	c.Normalize()
	return nil
}

func (c Config) Validate() error {
	if c.Tools.FFmpeg == "" {
		return errors.New("tools.ffmpeg is empty")
	}
	if c.Tools.FFprobe == "" {
		return errors.New("tools.ffprobe is empty")
	}
	if c.Tools.TimeoutSeconds < 0 {
		return fmt.Errorf("tools.timeout_seconds must be >= 0")
	}
	if c.Processing.Workers < 0 {
		return fmt.Errorf("processing.workers must be >= 0")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// Normalize trims values and lowercases the logging settings.
func (c *Config) Normalize() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.PickerDir = strings.TrimSpace(c.PickerDir)
}
