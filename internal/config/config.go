package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"

	"github.com/shvbsle/shev/internal/engine"
	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/filter"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/source"
	"github.com/shvbsle/shev/internal/state"
)

const (
	// RelativePath locates the config file under the XDG config home.
	RelativePath = "shev/config.toml"

	DefaultBackend            = BackendTea
	DefaultLogLevel           = "info"
	DefaultFrameIntervalMS    = 25
	DefaultPopupTTL           = state.DefaultPopupTTL
	DefaultCanvasCacheSize    = 64
	DefaultHistogramCacheSize = 32
	DefaultResourceCacheSize  = 32
	DefaultResourceTimeoutMS  = 2000
	DefaultMaxDepth           = 3
)

// Backends a frame can be drawn with.
const (
	BackendTea      = "tea"
	BackendTermloop = "termloop"
	BackendDump     = "dump"
)

// Config holds the user configuration for shev. Colours are #rrggbb
// strings; an empty colour keeps the built-in theme.
type Config struct {
	Backend  string `toml:"backend"`
	LogLevel string `toml:"log_level"`
	// LogPath overrides the XDG state log file. Empty means the default.
	LogPath string `toml:"log_path"`
	Strict  bool   `toml:"strict"`

	FrameIntervalMS int `toml:"frame_interval_ms"`
	PopupTTL        int `toml:"popup_ttl"`

	CanvasCacheSize    int `toml:"canvas_cache_size"`
	HistogramCacheSize int `toml:"histogram_cache_size"`
	ResourceCacheSize  int `toml:"resource_cache_size"`
	ResourceTimeoutMS  int `toml:"resource_timeout_ms"`

	Colors  Colors   `toml:"colors"`
	Source  Source   `toml:"source"`
	Filters []Filter `toml:"filters"`
}

type Colors struct {
	TopBarBg    string `toml:"top_bar_bg"`
	TopBarFont  string `toml:"top_bar_font"`
	SideBarBg   string `toml:"side_bar_bg"`
	SideBarFont string `toml:"side_bar_font"`
}

type Source struct {
	MaxDepth   int  `toml:"max_depth"`
	ShowHidden bool `toml:"show_hidden"`
}

// Filter is a fuzzy filter added to every view a source builds.
type Filter struct {
	Name  string `toml:"name"`
	Query string `toml:"query"`
}

func Default() *Config {
	return &Config{
		Backend:            DefaultBackend,
		LogLevel:           DefaultLogLevel,
		FrameIntervalMS:    DefaultFrameIntervalMS,
		PopupTTL:           DefaultPopupTTL,
		CanvasCacheSize:    DefaultCanvasCacheSize,
		HistogramCacheSize: DefaultHistogramCacheSize,
		ResourceCacheSize:  DefaultResourceCacheSize,
		ResourceTimeoutMS:  DefaultResourceTimeoutMS,
		Source:             Source{MaxDepth: DefaultMaxDepth},
	}
}

// DefaultPath returns the config file under the XDG config home, creating
// its directory if needed.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(RelativePath)
	if err != nil {
		return "", fmt.Errorf("could not get config path: %w", err)
	}
	return path, nil
}

// Load reads the config at path, or at DefaultPath when path is empty. A
// missing file yields the defaults; keys absent from the file keep theirs.
// Unknown keys and invalid values are errors.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := lo.Map(strict.Errors, func(e toml.DecodeError, _ int) string {
				return strings.Join(e.Key(), ".")
			})
			return nil, fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendTea, BackendTermloop, BackendDump:
	default:
		return fmt.Errorf("backend: unknown backend %q", c.Backend)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	positive := []struct {
		name  string
		value int
	}{
		{"frame_interval_ms", c.FrameIntervalMS},
		{"popup_ttl", c.PopupTTL},
		{"canvas_cache_size", c.CanvasCacheSize},
		{"histogram_cache_size", c.HistogramCacheSize},
		{"resource_cache_size", c.ResourceCacheSize},
		{"resource_timeout_ms", c.ResourceTimeoutMS},
		{"source.max_depth", c.Source.MaxDepth},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s: must be positive, got %d", p.name, p.value)
		}
	}

	if _, err := c.Theme(); err != nil {
		return err
	}

	for i, f := range c.Filters {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("filters[%d].name: must not be empty", i)
		}
		if strings.TrimSpace(f.Query) == "" {
			return fmt.Errorf("filters[%d].query: must not be empty", i)
		}
	}
	return nil
}

// ParseLogLevel parses debug, info, warn or error, ignoring case. Empty
// means info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// Theme returns the built-in theme with the configured colours applied.
func (c *Config) Theme() (state.Theme, error) {
	theme := state.DefaultTheme()
	colors := []struct {
		name  string
		value string
		dst   *graphic.Color
	}{
		{"colors.top_bar_bg", c.Colors.TopBarBg, &theme.TopBarBg},
		{"colors.top_bar_font", c.Colors.TopBarFont, &theme.TopBarFont},
		{"colors.side_bar_bg", c.Colors.SideBarBg, &theme.SideBarBg},
		{"colors.side_bar_font", c.Colors.SideBarFont, &theme.SideBarFont},
	}
	for _, col := range colors {
		if col.value == "" {
			continue
		}
		parsed, err := graphic.ParseHex(col.value)
		if err != nil {
			return state.Theme{}, fmt.Errorf("%s: %w", col.name, err)
		}
		*col.dst = parsed
	}
	return theme, nil
}

// ViewFilters returns the configured filters as fuzzy title filters.
func (c *Config) ViewFilters() []entry.Filter {
	filters := make([]entry.Filter, 0, len(c.Filters))
	for _, f := range c.Filters {
		filters = append(filters, filter.Fuzzy(f.Name, f.Query))
	}
	return filters
}

// SourceOptions returns the options every source is loaded with.
func (c *Config) SourceOptions(target string) source.Options {
	return source.Options{
		Target:     target,
		MaxDepth:   c.Source.MaxDepth,
		ShowHidden: c.Source.ShowHidden,
		Filters:    c.ViewFilters(),
	}
}

// EngineOptions returns the engine settings of a validated config.
func (c *Config) EngineOptions() (engine.Options, error) {
	theme, err := c.Theme()
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		FrameInterval:      time.Duration(c.FrameIntervalMS) * time.Millisecond,
		PopupTTL:           c.PopupTTL,
		Strict:             c.Strict,
		Theme:              theme,
		CanvasCacheSize:    c.CanvasCacheSize,
		HistogramCacheSize: c.HistogramCacheSize,
		ResourceCacheSize:  c.ResourceCacheSize,
		ResourceTimeout:    time.Duration(c.ResourceTimeoutMS) * time.Millisecond,
	}, nil
}

// CreateDefaultConfig writes a commented default config to path, or to
// DefaultPath when path is empty. It never overwrites an existing file.
func CreateDefaultConfig(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfig), 0o644)
}

const defaultConfig = `# shev configuration file

# Drawing backend: "tea" (bubbletea), "termloop" or "dump" (headless text frames)
backend = "tea"

# Log level: debug, info, warn or error
log_level = "info"

# Log file path for shev internal logs
# If commented out or empty, logs will be stored in the default XDG state directory:
#   - macOS: ~/Library/Application Support/shev/shev.log
#   - Linux: ~/.local/state/shev/shev.log
# You can override this with a custom path (supports ~ for home directory)
# log_path = ""

# Panic instead of logging when the navigation state breaks an invariant
strict = false

# Milliseconds between frames
frame_interval_ms = 25

# Frames a popup message stays on screen
popup_ttl = 120

# Cache capacities, in entries
canvas_cache_size = 64
histogram_cache_size = 32
resource_cache_size = 32

# Milliseconds to wait for an image before drawing a placeholder
resource_timeout_ms = 2000

[colors]
# top_bar_bg = "#33334d"
# top_bar_font = "#ffffff"
# side_bar_bg = "#1a1a1a"
# side_bar_font = "#ffffff"

[source]
# How many directory levels below the target the directory browser reads
max_depth = 3
show_hidden = false

# Extra fuzzy filters on entry titles, bound to Ctrl+N after each view's own
# [[filters]]
# name = "go files"
# query = ".go"
`
