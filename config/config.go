package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from multiple sources:
// 1. .env file (secrets: BOT_TOKEN, FORUM_DSN, TRACKER_URL, TRACKER_KEY)
// 2. config.yaml (bot settings, sync schedule, command auth)
// Environment variables override settings of the same name from files.
func LoadConfig() {
	// Load environment variables from .env, skip if the file is missing.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, skipping.")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// A missing config file is fine; environment variables and
			// defaults still apply.
			log.Printf("No config.yaml found, using environment variables and defaults.")
		} else {
			panic(fmt.Errorf("fatal error reading config file: %w", err))
		}
	}
}

func setDefaults() {
	viper.SetDefault("sync.schedule", "@hourly")
	viper.SetDefault("sync.run_at_startup", false)
	viper.SetDefault("sync.log_path", "data/sync.log")
	viper.SetDefault("sync.history_db_path", "data/sync_history.db")
	viper.SetDefault("sync.role_map_path", "data/role_map.json")
	viper.SetDefault("forum.timeout_seconds", 10)
	viper.SetDefault("forum.group_pattern", "AOD %")
	viper.SetDefault("tracker.timeout_seconds", 15)
}
