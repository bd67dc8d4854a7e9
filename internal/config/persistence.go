// file: internal/config/persistence.go
// version: 1.2.0
// guid: 6b0e3f8a-2c5d-47e1-9a4b-8d1f7c3e5a92

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFilePath returns the path to the YAML config file inside the data dir.
func ConfigFilePath() string {
	if AppConfig.DataDir != "" {
		return filepath.Join(AppConfig.DataDir, "config.yaml")
	}
	if AppConfig.DatabasePath != "" {
		return filepath.Join(filepath.Dir(AppConfig.DatabasePath), "config.yaml")
	}
	return ""
}

// LoadConfigFromFile loads settings from the YAML config file. File values
// only fill in fields that env/flags left empty, so explicit overrides win.
func LoadConfigFromFile() error {
	path := ConfigFilePath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig map[string]any
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		log.Printf("Warning: Failed to parse config file %s: %v", path, err)
		return nil
	}

	applied := 0

	stringFallbacks := map[string]*string{
		"database_path":  &AppConfig.DatabasePath,
		"device_id_path": &AppConfig.DeviceIDPath,
		"device_name":    &AppConfig.DeviceName,
		"language":       &AppConfig.Language,
		"log_level":      &AppConfig.LogLevel,
	}
	for key, ptr := range stringFallbacks {
		if *ptr == "" {
			if val, ok := fileConfig[key].(string); ok && val != "" {
				*ptr = val
				applied++
			}
		}
	}

	if val, ok := fileConfig["page_size"].(int); ok && val > 0 {
		AppConfig.PageSize = val
		applied++
	}

	if applied > 0 {
		log.Printf("Applied %d settings from config file %s", applied, path)
	}
	return nil
}

// SaveConfigToFile writes the current settings to the YAML config file.
func SaveConfigToFile() error {
	path := ConfigFilePath()
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}

	fileConfig := map[string]any{
		"data_dir":       AppConfig.DataDir,
		"database_path":  AppConfig.DatabasePath,
		"device_id_path": AppConfig.DeviceIDPath,
		"device_name":    AppConfig.DeviceName,
		"page_size":      AppConfig.PageSize,
		"language":       AppConfig.Language,
		"log_level":      AppConfig.LogLevel,
	}

	data, err := yaml.Marshal(fileConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("Configuration saved to file: %s", path)
	return nil
}
