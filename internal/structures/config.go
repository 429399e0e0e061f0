package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath       string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval   time.Duration `yaml:"saveInterval" validate:"required|min:1"`
	DebounceWindow time.Duration `yaml:"debounceWindow"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type TripConfig struct {
	// MaxInteractions bounds the widget interaction log (most-recent-N).
	MaxInteractions  int    `yaml:"maxInteractions"`
	DefaultBudget    string `yaml:"defaultBudget" validate:"in:budget,moderate,premium"`
	DefaultBudgetMin int    `yaml:"defaultBudgetMin"`
	DefaultBudgetMax int    `yaml:"defaultBudgetMax"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Trip        TripConfig    `yaml:"trip"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
