package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const appName = "explorador"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds all application configuration
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Images  ImagesConfig  `mapstructure:"images"`
	Store   StoreConfig   `mapstructure:"store"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig points at the department REST API
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ImagesConfig controls image lookup
type ImagesConfig struct {
	SearchURL        string        `mapstructure:"search_url"`
	ThumbSize        int           `mapstructure:"thumb_size"`
	Placeholder      string        `mapstructure:"placeholder"`
	Timeout          time.Duration `mapstructure:"timeout"`           // per search request
	CachePlaceholder bool          `mapstructure:"cache_placeholder"` // memoize failed lookups
	Prefetch         int           `mapstructure:"prefetch"`          // concurrent list thumbnail lookups
}

// StoreConfig locates the preference database
type StoreConfig struct {
	Path      string `mapstructure:"path"` // empty keeps preferences in memory only
	Namespace string `mapstructure:"namespace"`
}

// ViewerConfig selects the program used to open image URLs
type ViewerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	ProximityRows int    `mapstructure:"proximity_rows"` // rows beyond the visible window that count as visible
	DefaultSort   string `mapstructure:"default_sort"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL: "https://api-colombia.com/api/v1",
			Timeout: 15 * time.Second,
		},
		Images: ImagesConfig{
			SearchURL:        "https://es.wikipedia.org/w/api.php",
			ThumbSize:        1280,
			Placeholder:      "https://upload.wikimedia.org/wikipedia/commons/2/21/Colombia_departments_blank_map.svg",
			Timeout:          10 * time.Second,
			CachePlaceholder: true,
			Prefetch:         4,
		},
		Store: StoreConfig{
			Path:      filepath.Join(defaultDataPath(), "preferences.db"),
			Namespace: "colombia-explorer:v4",
		},
		UI: UIConfig{
			ProximityRows: 3,
			DefaultSort:   "name-asc",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), appName+".log"),
			Level: "INFO",
		},
	}
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Images.Validate(); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

func (c *ImagesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SearchURL, validation.Required, is.URL),
		validation.Field(&c.ThumbSize, validation.Required, validation.Min(16)),
		validation.Field(&c.Placeholder, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Prefetch, validation.Required, validation.Min(1), validation.Max(32)),
	)
}

func (c *UIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ProximityRows, validation.Min(0)),
		validation.Field(&c.DefaultSort, validation.In("name-asc", "name-desc")),
	)
}

// defaultDataPath returns the per-user data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), defaultConfigPath(), ".")
}

func loadConfig(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. EXPLORADOR_IMAGES_PREFETCH
	v.SetEnvPrefix("EXPLORADOR")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override it
func bindDefaults(v *viper.Viper, cfg *Config) {
	for key, val := range settings(cfg) {
		v.SetDefault(key, val)
	}
}

// settings flattens cfg into snake_case viper keys
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"catalog.base_url":         cfg.Catalog.BaseURL,
		"catalog.timeout":          cfg.Catalog.Timeout,
		"images.search_url":        cfg.Images.SearchURL,
		"images.thumb_size":        cfg.Images.ThumbSize,
		"images.placeholder":       cfg.Images.Placeholder,
		"images.timeout":           cfg.Images.Timeout,
		"images.cache_placeholder": cfg.Images.CachePlaceholder,
		"images.prefetch":          cfg.Images.Prefetch,
		"store.path":               cfg.Store.Path,
		"store.namespace":          cfg.Store.Namespace,
		"viewer.command":           cfg.Viewer.Command,
		"viewer.args":              cfg.Viewer.Args,
		"ui.proximity_rows":        cfg.UI.ProximityRows,
		"ui.default_sort":          cfg.UI.DefaultSort,
		"logging.file":             cfg.Logging.File,
		"logging.level":            cfg.Logging.Level,
	}
}

// SaveConfig writes cfg to the default config file
func SaveConfig(cfg *Config) error {
	return saveConfig(cfg, defaultConfigPath())
}

func saveConfig(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v := viper.New()
	for key, val := range settings(cfg) {
		v.Set(key, val)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes the preference database, wiping notes, favorites and settings
func ClearCache(cfg *Config) error {
	if cfg.Store.Path == "" {
		return nil
	}
	path := expandHome(cfg.Store.Path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
