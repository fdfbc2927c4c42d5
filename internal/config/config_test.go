package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 70, cfg.Gradebook.DefaultAssignmentsWeight)
	assert.Equal(t, 30, cfg.Gradebook.DefaultQuizzesWeight)
	assert.False(t, cfg.Gradebook.DefaultUseWeights)
	assert.Equal(t, "gradebook_export_queue", cfg.RabbitMQ.ExportQueue)
	assert.Equal(t, 8*time.Hour, cfg.Auth.TokenTTL)
	assert.Contains(t, cfg.CORS.AllowedMethods, "PATCH")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("EXPORT_WORKERS", "7")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 7, cfg.Export.Workers)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "gb", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/gb?sslmode=disable", c.DSN())
}
