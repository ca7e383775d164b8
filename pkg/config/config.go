// Package config provides configuration loading for sv.
package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/vanderheijden86/sectionview/pkg/expansion"
	"go.uber.org/zap/zapcore"
)

// Config is the full sv configuration.
type Config struct {
	List    ListConfig    `koanf:"list"`
	Data    DataConfig    `koanf:"data"`
	State   StateConfig   `koanf:"state"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ListConfig tunes the expandable list.
type ListConfig struct {
	AnimationRowThreshold         int           `koanf:"animation_row_threshold"`
	SuppressHeaderFooterWhenEmpty bool          `koanf:"suppress_header_footer_when_empty"`
	RowAnimation                  string        `koanf:"row_animation"`
	AnimationFrame                time.Duration `koanf:"animation_frame"`
}

// DataConfig points at the catalog and the row store.
type DataConfig struct {
	Catalog                string        `koanf:"catalog"`
	Database               string        `koanf:"database"`
	MaxConcurrentDownloads int           `koanf:"max_concurrent_downloads"`
	FetchDelay             time.Duration `koanf:"fetch_delay"` // Simulated latency added to every download
	Watch                  bool          `koanf:"watch"`
}

// StateConfig controls persisted expansion state.
type StateConfig struct {
	Persist bool   `koanf:"persist"`
	File    string `koanf:"file"`
}

// LogConfig configures the zap logger. sv owns the terminal, so logs always
// go to a file.
type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		List: ListConfig{
			AnimationRowThreshold: expansion.DefaultAnimationRowThreshold,
			RowAnimation:          expansion.RowAnimationAutomatic.String(),
			AnimationFrame:        16 * time.Millisecond,
		},
		Data: DataConfig{
			Catalog:                filepath.Join(StateDirName, "catalog.yaml"),
			Database:               filepath.Join(StateDirName, "rows.db"),
			MaxConcurrentDownloads: 4,
			Watch:                  true,
		},
		State: StateConfig{
			Persist: true,
			File:    filepath.Join(StateDirName, "state.json"),
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(StateDirName, "sv.log"),
		},
	}
}

// applyDefaults fills values that must not stay zero.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.List.RowAnimation == "" {
		cfg.List.RowAnimation = def.List.RowAnimation
	}
	if cfg.List.AnimationFrame == 0 {
		cfg.List.AnimationFrame = def.List.AnimationFrame
	}
	if cfg.Data.Catalog == "" {
		cfg.Data.Catalog = def.Data.Catalog
	}
	if cfg.Data.Database == "" {
		cfg.Data.Database = def.Data.Database
	}
	if cfg.Data.MaxConcurrentDownloads == 0 {
		cfg.Data.MaxConcurrentDownloads = def.Data.MaxConcurrentDownloads
	}
	if cfg.State.File == "" {
		cfg.State.File = def.State.File
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = def.Log.File
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.List.AnimationRowThreshold < 0 {
		errs = append(errs, fmt.Errorf("list.animation_row_threshold must not be negative: %d", c.List.AnimationRowThreshold))
	}
	if _, ok := expansion.ParseRowAnimation(c.List.RowAnimation); !ok {
		errs = append(errs, fmt.Errorf("list.row_animation: unknown animation %q", c.List.RowAnimation))
	}
	if c.List.AnimationFrame <= 0 {
		errs = append(errs, errors.New("list.animation_frame must be positive"))
	}
	if c.Data.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Errorf("data.max_concurrent_downloads must be at least 1: %d", c.Data.MaxConcurrentDownloads))
	}
	if c.Data.FetchDelay < 0 {
		errs = append(errs, errors.New("data.fetch_delay must not be negative"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			errs = append(errs, fmt.Errorf("metrics.addr: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Expansion converts the list settings to the controller's configuration.
// Call it on a validated Config.
func (c *Config) Expansion() expansion.Config {
	anim, _ := expansion.ParseRowAnimation(c.List.RowAnimation)
	return expansion.Config{
		AnimationRowThreshold:         c.List.AnimationRowThreshold,
		SuppressHeaderFooterWhenEmpty: c.List.SuppressHeaderFooterWhenEmpty,
		RowAnimation:                  anim,
	}
}

// Resolve makes every relative path absolute against the project root.
func (c *Config) Resolve(root string) {
	for _, p := range []*string{&c.Data.Catalog, &c.Data.Database, &c.State.File, &c.Log.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(root, *p)
		}
	}
}
