package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/oy3o/rzframe"
)

// Config defines queue sizes and pacing for a System.
type Config struct {
	Name       string
	BufferSize int           // BufferedSink capacity
	ReadQueue  int           // decoded packets held before ReadNext refuses more
	SendQueue  int           // packets held before Send refuses more
	WriteBatch int           // packets written per writer pass in Run
	IdleDelay  time.Duration // writer pause between passes while the queue drains
}

// DefaultConfig returns the defaults used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Name:       "rzframe",
		BufferSize: rzframe.DefaultBufferSize,
		ReadQueue:  64,
		SendQueue:  64,
		WriteBatch: 3,
		IdleDelay:  time.Millisecond,
	}
}

var errInvalidConfig = errors.New("session: invalid config")

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.BufferSize <= 0:
		return fmt.Errorf("%w: buffer_size must be positive", errInvalidConfig)
	case c.ReadQueue <= 0:
		return fmt.Errorf("%w: read_queue must be positive", errInvalidConfig)
	case c.SendQueue <= 0:
		return fmt.Errorf("%w: send_queue must be positive", errInvalidConfig)
	case c.WriteBatch <= 0:
		return fmt.Errorf("%w: write_batch must be positive", errInvalidConfig)
	case c.IdleDelay < 0:
		return fmt.Errorf("%w: idle_delay must not be negative", errInvalidConfig)
	}
	return nil
}

// session config.toml key mapping.
type fileConfig struct {
	Name       string `toml:"name"`
	BufferSize int    `toml:"buffer_size"`
	ReadQueue  int    `toml:"read_queue"`
	SendQueue  int    `toml:"send_queue"`
	WriteBatch int    `toml:"write_batch"`
	IdleDelay  string `toml:"idle_delay"`
}

// LoadConfig reads a TOML file and overlays the keys it defines onto DefaultConfig.
func LoadConfig(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load session config: %w", err)
	}
	return overlay(raw, meta)
}

// DecodeConfig is LoadConfig for TOML text already in memory.
func DecodeConfig(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("decode session config: %w", err)
	}
	return overlay(raw, meta)
}

func overlay(raw fileConfig, meta toml.MetaData) (Config, error) {
	cfg := DefaultConfig()

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("buffer_size") {
		cfg.BufferSize = raw.BufferSize
	}
	if meta.IsDefined("read_queue") {
		cfg.ReadQueue = raw.ReadQueue
	}
	if meta.IsDefined("send_queue") {
		cfg.SendQueue = raw.SendQueue
	}
	if meta.IsDefined("write_batch") {
		cfg.WriteBatch = raw.WriteBatch
	}
	if meta.IsDefined("idle_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.IdleDelay))
		if err != nil {
			return Config{}, fmt.Errorf("load session config: idle_delay: %w", err)
		}
		cfg.IdleDelay = d
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load session config: unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
