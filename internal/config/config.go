// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	GitHub   GitHubConfig   `mapstructure:"github" yaml:"github"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer" yaml:"analyzer"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
	Staging  StagingConfig  `mapstructure:"staging" yaml:"staging"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// GitHubConfig holds settings for the contents-API client.
type GitHubConfig struct {
	// Token authenticates listing and download requests. Optional;
	// anonymous access works for public repositories within rate limits.
	Token string `mapstructure:"token" yaml:"-"`
	// APIBaseURL overrides the API endpoint, mainly for tests and
	// enterprise installs. Empty means the public API.
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`
}

// AnalyzerConfig configures the external static-analysis engine.
type AnalyzerConfig struct {
	// Bin is the engine executable.
	Bin string `mapstructure:"bin" yaml:"bin"`
	// Extension is the recognized source-file extension.
	Extension string `mapstructure:"extension" yaml:"extension"`
	// Timeout bounds a single engine invocation.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ReportConfig configures the output artifact.
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// StagingConfig configures the working area downloaded files are staged in.
type StagingConfig struct {
	// Dir is the staging root. Each run stages into a per-run
	// subdirectory beneath it.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Keep retains the staging area after the run instead of removing it.
	Keep bool `mapstructure:"keep" yaml:"keep"`
}

// NewDefaultConfig returns a Config populated with sane defaults. The
// staging root lives under the user's home directory when one can be
// resolved, otherwise under the current directory.
func NewDefaultConfig() *Config {
	stagingRoot := ".compliscan"
	if home, err := homedir.Dir(); err == nil {
		stagingRoot = filepath.Join(home, ".compliscan", "staging")
	}

	return &Config{
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "compliscan",
			MaxSize:     50,
			MaxBackups:  3,
			MaxAge:      14,
		},
		Analyzer: AnalyzerConfig{
			Bin:       "bandit",
			Extension: ".py",
			Timeout:   2 * time.Minute,
		},
		Report: ReportConfig{
			Format: "scan",
			Output: "compliance_report.csv",
		},
		Staging: StagingConfig{
			Dir: stagingRoot,
		},
	}
}

// SetDefaults registers the default values on a viper instance so that
// config files and environment variables only need to override what they
// change.
func SetDefaults(v *viper.Viper) {
	def := NewDefaultConfig()

	v.SetDefault("logger.level", def.Logger.Level)
	v.SetDefault("logger.format", def.Logger.Format)
	v.SetDefault("logger.service_name", def.Logger.ServiceName)
	v.SetDefault("logger.max_size", def.Logger.MaxSize)
	v.SetDefault("logger.max_backups", def.Logger.MaxBackups)
	v.SetDefault("logger.max_age", def.Logger.MaxAge)

	v.SetDefault("analyzer.bin", def.Analyzer.Bin)
	v.SetDefault("analyzer.extension", def.Analyzer.Extension)
	v.SetDefault("analyzer.timeout", def.Analyzer.Timeout)

	v.SetDefault("report.format", def.Report.Format)
	v.SetDefault("report.output", def.Report.Output)

	v.SetDefault("staging.dir", def.Staging.Dir)
}

// NewConfigFromViper unmarshals a fully-populated viper instance into a
// Config.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
