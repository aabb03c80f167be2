package model

import "time"

// Config is the complete casework configuration
type Config struct {
	Police    PoliceConfig    `yaml:"police" mapstructure:"police"`
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Phonebook PhonebookConfig `yaml:"phonebook" mapstructure:"phonebook"`
	Notify    NotifyConfig    `yaml:"notify" mapstructure:"notify"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// PoliceConfig controls case handling
type PoliceConfig struct {
	Character   string        `yaml:"character" mapstructure:"character"` // Operating character name
	DoForensics bool          `yaml:"do_forensics" mapstructure:"do_forensics"`
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay" validate:"gte=0"`
}

// BrowserConfig controls the Playwright session
type BrowserConfig struct {
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Headless         bool          `yaml:"headless" mapstructure:"headless"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	ActionsPerSecond float64       `yaml:"actions_per_second" mapstructure:"actions_per_second" validate:"gt=0"`
	ActionBurst      int           `yaml:"action_burst" mapstructure:"action_burst" validate:"gte=1"`
	StorageState     string        `yaml:"storage_state,omitempty" mapstructure:"storage_state"` // Saved login state
	HTTPProxy        string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy" validate:"omitempty,url"`
	ProxyBypass      string        `yaml:"proxy_bypass,omitempty" mapstructure:"proxy_bypass"`
	ViewportWidth    int           `yaml:"viewport_width" mapstructure:"viewport_width" validate:"gte=320"`
	ViewportHeight   int           `yaml:"viewport_height" mapstructure:"viewport_height" validate:"gte=240"`
}

// StorageConfig locates the persistent stores
type StorageConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir" validate:"required"`
	Journal string `yaml:"journal" mapstructure:"journal"` // SQLite path, empty disables the journal
}

// PhonebookConfig controls caching of directory searches
type PhonebookConfig struct {
	CacheEnabled bool          `yaml:"cache_enabled" mapstructure:"cache_enabled"`
	MemoryTTL    time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl" validate:"gte=0"`
	DiskTTL      time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl" validate:"gte=0"`
}

// NotifyConfig configures the human-visible notification sink
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url,omitempty" mapstructure:"webhook_url" validate:"omitempty,url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
}

// MetricsConfig configures metric export
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" mapstructure:"textfile"` // node-exporter textfile path
}

// LoggingConfig configures slog
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=text json"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Police: PoliceConfig{
			DoForensics: false,
			SettleDelay: 600 * time.Millisecond,
		},
		Browser: BrowserConfig{
			Headless:         true,
			Timeout:          15 * time.Second,
			ActionsPerSecond: 3,
			ActionBurst:      1,
			ViewportWidth:    1280,
			ViewportHeight:   900,
		},
		Storage: StorageConfig{
			DataDir: "game_data",
			Journal: "game_data/journal.sqlite",
		},
		Phonebook: PhonebookConfig{
			CacheEnabled: true,
			MemoryTTL:    5 * time.Minute,
			DiskTTL:      30 * time.Minute,
		},
		Notify: NotifyConfig{
			Timeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
