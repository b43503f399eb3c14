package config

import (
	"reflect"
	"strings"
	"time"

	"weread-sync/core/database"
	"weread-sync/core/logger"
	"weread-sync/core/reconcile"
	"weread-sync/core/retry"
	"weread-sync/core/server"
	"weread-sync/core/storage"
	"weread-sync/core/target"
	"weread-sync/core/weread"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP trigger server.
	Server server.Config `mapstructure:"server"`
	// Source holds the reading platform session.
	Source weread.Config `mapstructure:"source"`
	// Target selects and authenticates the workspace store.
	Target target.Config `mapstructure:"target"`
	// Database backs the local workspace driver.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the cover mirror bucket.
	Storage storage.Config `mapstructure:"storage"`
	// Sync tunes rendering, throttling and retries of a run.
	Sync SyncConfig `mapstructure:"sync"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// SyncConfig holds the behavior of a sync run.
type SyncConfig struct {
	// BlockType is the default block style of highlights and notes:
	// callout, paragraph, quote, bulleted_list_item or numbered_list_item.
	BlockType string `mapstructure:"block_type" default:"callout"`
	// ShowColor colors blocks after the highlight color.
	ShowColor bool `mapstructure:"show_color" default:"true"`
	// SyncBookmarks includes plain bookmarks along with highlights.
	SyncBookmarks bool `mapstructure:"sync_bookmarks" default:"true"`
	// MirrorCovers copies covers into the storage bucket.
	MirrorCovers bool `mapstructure:"mirror_covers" default:"false"`
	// HeatmapImage is the public URL of the rendered reading heatmap.
	HeatmapImage string `mapstructure:"heatmap_image" default:""`
	// WriteDelayMS is the pause between two record writes.
	WriteDelayMS int `mapstructure:"write_delay_ms" default:"100"`
	// BatchSize is the number of blocks appended per call (at most 100).
	BatchSize int `mapstructure:"batch_size" default:"100"`
	// RetryAttempts bounds the calls made for one remote operation.
	RetryAttempts int `mapstructure:"retry_attempts" default:"3"`
	// RetryDelayMS is the wait between two attempts.
	RetryDelayMS int `mapstructure:"retry_delay_ms" default:"5000"`
	// Timezone is the IANA zone days and dates are computed in.
	Timezone string `mapstructure:"timezone" default:"Asia/Shanghai"`
}

// Policy returns the retry policy of remote calls.
func (c SyncConfig) Policy() retry.Policy {
	p := retry.Policy{Attempts: c.RetryAttempts, Delay: time.Duration(c.RetryDelayMS) * time.Millisecond}
	if p.Attempts <= 0 {
		p.Attempts = retry.DefaultPolicy().Attempts
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// Options returns the write options of the reconciliation engine.
func (c SyncConfig) Options() reconcile.Options {
	return reconcile.Options{
		BatchSize:  c.BatchSize,
		WriteDelay: time.Duration(c.WriteDelayMS) * time.Millisecond,
	}
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// .env values override the process environment
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	// SOURCE_COOKIE -> source.cookie
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
