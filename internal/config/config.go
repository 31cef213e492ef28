// Package config assembles the server's Config object from environment
// variables via spf13/viper, with joho/godotenv loading a local .env
// file first. No command-line flags are bound. The library choice
// follows ValentinKolb-dKV's cmd/serve package.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tonycui/spatio/internal/aol"
)

// Config is the server's {listen_host, listen_port, aof_path,
// aof_sync_policy, aof_enabled, default_timeout} object (§6).
type Config struct {
	ListenHost     string
	ListenPort     int
	LogLevel       string
	AofPath        string
	AofEnabled     bool
	AofSyncPolicy  aol.SyncPolicy
	DefaultTimeout time.Duration
}

// Load reads environment variables (optionally preloaded from a local
// .env via godotenv) through viper, falling back to the documented
// defaults (§6).
func Load() Config {
	_ = godotenv.Load(".env")

	viper.SetEnvPrefix("spatio")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("host", "0.0.0.0")
	viper.SetDefault("port", 9851)
	viper.SetDefault("aof_path", "./appendonly.aof")
	viper.SetDefault("aof_enabled", true)
	viper.SetDefault("aof_sync", "EverySecond")
	viper.SetDefault("timeout_ms", 5000)

	viper.BindEnv("log_level", "LOG_LEVEL")
	viper.SetDefault("log_level", "info")

	return Config{
		ListenHost:     viper.GetString("host"),
		ListenPort:     viper.GetInt("port"),
		LogLevel:       viper.GetString("log_level"),
		AofPath:        viper.GetString("aof_path"),
		AofEnabled:     viper.GetBool("aof_enabled"),
		AofSyncPolicy:  aol.ParseSyncPolicy(viper.GetString("aof_sync")),
		DefaultTimeout: time.Duration(viper.GetInt("timeout_ms")) * time.Millisecond,
	}
}

// ListenAddr returns the "host:port" string for net.Listen.
func (c Config) ListenAddr() string {
	return c.ListenHost + ":" + strconv.Itoa(c.ListenPort)
}
