package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FINBOOK_DB_PATH",
		"FINBOOK_LISTEN_ADDR",
		"LOG_LEVEL",
		"SYNC_ENABLED",
		"SYNC_URL",
		"SYNC_INTERVAL_MINUTES",
		"MAX_ATTACHMENT_MB",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "finbook.db", cfg.DatabasePath)
	require.Equal(t, "127.0.0.1:8990", cfg.ListenAddr)
	require.False(t, cfg.SyncEnabled)
	require.Equal(t, 15*time.Minute, cfg.SyncInterval)
	require.EqualValues(t, DefaultMaxAttachmentMB, cfg.MaxAttachmentMB)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINBOOK_DB_PATH", "/tmp/test.db")
	t.Setenv("FINBOOK_LISTEN_ADDR", "0.0.0.0:9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYNC_ENABLED", "true")
	t.Setenv("SYNC_URL", "http://localhost:3000")
	t.Setenv("SYNC_INTERVAL_MINUTES", "5")
	t.Setenv("MAX_ATTACHMENT_MB", "25")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	require.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.SyncEnabled)
	require.Equal(t, "http://localhost:3000", cfg.SyncURL)
	require.Equal(t, 5*time.Minute, cfg.SyncInterval)
	require.EqualValues(t, 25, cfg.MaxAttachmentMB)
	require.EqualValues(t, 25*1024*1024, cfg.MaxAttachmentBytes())
}

func TestLoad_SyncEnabledRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SYNC_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SYNC_URL")
}

func TestLoad_IgnoresBadNumericValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SYNC_INTERVAL_MINUTES", "not-a-number")
	t.Setenv("MAX_ATTACHMENT_MB", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.SyncInterval)
	require.EqualValues(t, DefaultMaxAttachmentMB, cfg.MaxAttachmentMB)
}
