// file: internal/config/config.go
// version: 1.1.0
// guid: 3f7a1d9c-8b2e-4c6f-a5d0-1e9b4c7f2a83

package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DataDir      string
	DatabasePath string
	DeviceIDPath string
	DeviceName   string // optional override for the device label
	PageSize     int
	Language     string
	LogLevel     string
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("page_size", 20)
	viper.SetDefault("language", "en")
	viper.SetDefault("log_level", "info")

	AppConfig = Config{
		DataDir:      viper.GetString("data_dir"),
		DatabasePath: viper.GetString("database_path"),
		DeviceIDPath: viper.GetString("device_id_path"),
		DeviceName:   viper.GetString("device_name"),
		PageSize:     viper.GetInt("page_size"),
		Language:     viper.GetString("language"),
		LogLevel:     viper.GetString("log_level"),
	}

	if AppConfig.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			AppConfig.DataDir = filepath.Join(home, ".novelshelf")
		} else {
			AppConfig.DataDir = ".novelshelf"
		}
	}
	if AppConfig.DatabasePath == "" {
		AppConfig.DatabasePath = filepath.Join(AppConfig.DataDir, "novelshelf.db")
	}
	if AppConfig.DeviceIDPath == "" {
		AppConfig.DeviceIDPath = filepath.Join(AppConfig.DataDir, "device_id")
	}
	if AppConfig.PageSize <= 0 {
		AppConfig.PageSize = 20
	}
}
