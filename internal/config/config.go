// Package config loads process configuration from a config file and
// FENRIR_-prefixed environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration for cmd/server.
type Config struct {
	HTTPAddr       string
	LogLevel       string
	DepthDefault   int
	DispatchShards int
	RedisAddr      string
	RedisEnabled   bool
}

// Load reads configPath (if it exists) then overlays FENRIR_-prefixed
// environment variables, which always win.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FENRIR")
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("depth.default", 10)
	v.SetDefault("dispatch.shards", 16)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.enabled", false)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("stat config: %w", err)
		}
	}

	return Config{
		HTTPAddr:       v.GetString("http.addr"),
		LogLevel:       v.GetString("log.level"),
		DepthDefault:   v.GetInt("depth.default"),
		DispatchShards: v.GetInt("dispatch.shards"),
		RedisAddr:      v.GetString("redis.addr"),
		RedisEnabled:   v.GetBool("redis.enabled"),
	}, nil
}
