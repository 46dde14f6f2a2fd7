package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "distribuidoras.db", cfg.DB.Path)
	assert.Equal(t, int64(3_000_000), cfg.Pipeline.MaxFileSize)
	assert.Equal(t, "distribuidoras", cfg.Export.Dir)
	assert.Equal(t, "relatorio.xlsx", cfg.Export.ReportPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FATURAS_DB_PATH", "/tmp/faturas-test.db")
	t.Setenv("FATURAS_PIPELINE_MAX_FILE_SIZE", "1000")
	t.Setenv("FATURAS_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/faturas-test.db", cfg.DB.Path)
	assert.Equal(t, int64(1000), cfg.Pipeline.MaxFileSize)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestDSN(t *testing.T) {
	cfg := DBConfig{Path: "distribuidoras.db"}
	assert.Equal(t, "sqlite://distribuidoras.db", cfg.DSN())
}
