package config

import (
	"time"

	"github.com/spf13/viper"
)

func Load() error {
	// Console
	viper.SetDefault("LISTEN_ADDR", ":3000")
	viper.SetDefault("PAGE_SIZE", 10)

	// Backend API
	viper.SetDefault("API_URL", "http://localhost:8080")
	viper.SetDefault("API_TIMEOUT", "10s")
	viper.SetDefault("STATUS_INTERVAL", "10s")

	viper.AutomaticEnv()
	return nil
}

func ListenAddr() string            { return viper.GetString("LISTEN_ADDR") }
func PageSize() int                 { return viper.GetInt("PAGE_SIZE") }
func APIURL() string                { return viper.GetString("API_URL") }
func APITimeout() time.Duration     { return viper.GetDuration("API_TIMEOUT") }
func StatusInterval() time.Duration { return viper.GetDuration("STATUS_INTERVAL") }
