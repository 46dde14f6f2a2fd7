package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DB       DBConfig
	Pipeline PipelineConfig
	Export   ExportConfig
	Log      LogConfig
}

// DBConfig holds sqlite store settings.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// DSN returns the connection string for the migration tool.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf("sqlite://%s", d.Path)
}

// PipelineConfig holds batch processing settings.
type PipelineConfig struct {
	// MaxFileSize is the byte threshold above which a document is treated
	// as unreadable for identification and skipped.
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// ExportConfig holds output settings for the forecasting stage.
type ExportConfig struct {
	Dir        string `mapstructure:"dir"`
	ReportPath string `mapstructure:"report_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the FATURAS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FATURAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DB defaults
	v.SetDefault("db.path", "distribuidoras.db")

	// Pipeline defaults
	v.SetDefault("pipeline.max_file_size", 3_000_000)

	// Export defaults
	v.SetDefault("export.dir", "distribuidoras")
	v.SetDefault("export.report_path", "relatorio.xlsx")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"db.path":                "FATURAS_DB_PATH",
		"pipeline.max_file_size": "FATURAS_PIPELINE_MAX_FILE_SIZE",
		"export.dir":             "FATURAS_EXPORT_DIR",
		"export.report_path":     "FATURAS_EXPORT_REPORT_PATH",
		"log.level":              "FATURAS_LOG_LEVEL",
		"log.format":             "FATURAS_LOG_FORMAT",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
