package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://i.weread.qq.com", cfg.Source.APIURL)
	assert.Equal(t, "notion", cfg.Target.Driver)
	assert.Equal(t, "书架", cfg.Target.Names.Books)
	assert.Equal(t, "阅读记录", cfg.Target.Names.Reading)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "weread", cfg.Storage.Bucket)
	assert.Equal(t, "callout", cfg.Sync.BlockType)
	assert.True(t, cfg.Sync.ShowColor)
	assert.True(t, cfg.Sync.SyncBookmarks)
	assert.False(t, cfg.Sync.MirrorCovers)
	assert.Equal(t, "Asia/Shanghai", cfg.Sync.Timezone)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SOURCE_COOKIE=wr_skey=abc\nTARGET_PAGE=https://www.notion.so/WeRead-0123\n"), 0o600))
	t.Setenv("TARGET_NAMES_BOOKS", "Books")
	t.Setenv("SYNC_SHOW_COLOR", "false")
	t.Setenv("SYNC_RETRY_ATTEMPTS", "5")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "wr_skey=abc", cfg.Source.Cookie)
	assert.Equal(t, "https://www.notion.so/WeRead-0123", cfg.Target.Page)
	assert.Equal(t, "Books", cfg.Target.Names.Books)
	assert.False(t, cfg.Sync.ShowColor)
	assert.Equal(t, 5, cfg.Sync.RetryAttempts)
}

func TestSyncConfig_Derived(t *testing.T) {
	tests := []struct {
		name     string
		cfg      SyncConfig
		attempts int
		delay    time.Duration
	}{
		{"Configured", SyncConfig{RetryAttempts: 2, RetryDelayMS: 250}, 2, 250 * time.Millisecond},
		{"Zero Attempts Use Default", SyncConfig{RetryDelayMS: 10}, 3, 10 * time.Millisecond},
		{"Negative Delay", SyncConfig{RetryAttempts: 1, RetryDelayMS: -5}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.cfg.Policy()
			assert.Equal(t, tt.attempts, p.Attempts)
			assert.Equal(t, tt.delay, p.Delay)
		})
	}

	opts := SyncConfig{BatchSize: 50, WriteDelayMS: 200}.Options()
	assert.Equal(t, 50, opts.BatchSize)
	assert.Equal(t, 200*time.Millisecond, opts.WriteDelay)
}
