package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/ini.v1"
)

const defaultConfigTemplate = "PORT=3000\nSQLITE_PATH=data/mediafeed.db\nUPLOAD_PATH=uploads\nJWT_SECRET=%s\nJWT_LIFETIME_SECONDS=3600\n"

// configKeys are the keys that may also be supplied through the environment.
var configKeys = []string{
	"PORT",
	"SQLITE_PATH",
	"SQL_DSN",
	"UPLOAD_PATH",
	"JWT_SECRET",
	"JWT_LIFETIME_SECONDS",
	"RESET_TOKEN_LIFETIME_SECONDS",
	"VERIFY_TOKEN_LIFETIME_SECONDS",
	"REDIS_CONN_STRING",
	"ADMIN_EMAIL",
	"ADMIN_PASSWORD",
	"DELETE_REMOVES_FILE",
	"ITEMS_PER_PAGE",
	"LOG_LEVEL",
}

func defaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "mediafeed", "config.ini"), nil
}

func loadConfigFile(configPath string) (map[string]string, error) {
	if err := ensureConfigFile(configPath); err != nil {
		return nil, err
	}
	return parseIniConfig(configPath)
}

func ensureConfigFile(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", configDir, err)
	}

	configFile, err := os.OpenFile(configPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create config file %s: %w", configPath, err)
	}
	defer configFile.Close()

	if _, err := configFile.WriteString(fmt.Sprintf(defaultConfigTemplate, uuid.New().String())); err != nil {
		return fmt.Errorf("write default config file %s: %w", configPath, err)
	}

	return nil
}

func parseIniConfig(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse ini config %s: %w", path, err)
	}

	configMap := make(map[string]string)
	for _, section := range cfg.Sections() {
		for _, key := range section.Keys() {
			configKey := strings.ToUpper(strings.TrimSpace(key.Name()))
			if configKey == "" {
				continue
			}
			configMap[configKey] = strings.TrimSpace(key.Value())
		}
	}

	return configMap, nil
}

// overlayEnv copies every known key present in the environment over configMap.
func overlayEnv(configMap map[string]string) {
	for _, key := range configKeys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			configMap[key] = strings.TrimSpace(value)
		}
	}
}

func parseSeconds(key, value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("invalid value for %s: must be positive", key)
	}
	return time.Duration(seconds) * time.Second, nil
}

func applyConfigMap(configMap map[string]string) error {
	if configValue, ok := configMap["SQLITE_PATH"]; ok && configValue != "" {
		SQLitePath = configValue
	}

	if configValue, ok := configMap["SQL_DSN"]; ok && configValue != "" {
		SQLDSN = configValue
	}

	if configValue, ok := configMap["UPLOAD_PATH"]; ok && configValue != "" {
		UploadPath = configValue
	}

	if configValue, ok := configMap["JWT_SECRET"]; ok && configValue != "" {
		JWTSecret = configValue
	}

	if configValue, ok := configMap["JWT_LIFETIME_SECONDS"]; ok && configValue != "" {
		lifetime, err := parseSeconds("JWT_LIFETIME_SECONDS", configValue)
		if err != nil {
			return err
		}
		JWTLifetime = lifetime
	}

	if configValue, ok := configMap["RESET_TOKEN_LIFETIME_SECONDS"]; ok && configValue != "" {
		lifetime, err := parseSeconds("RESET_TOKEN_LIFETIME_SECONDS", configValue)
		if err != nil {
			return err
		}
		ResetTokenLifetime = lifetime
	}

	if configValue, ok := configMap["VERIFY_TOKEN_LIFETIME_SECONDS"]; ok && configValue != "" {
		lifetime, err := parseSeconds("VERIFY_TOKEN_LIFETIME_SECONDS", configValue)
		if err != nil {
			return err
		}
		VerifyTokenLifetime = lifetime
	}

	if configValue, ok := configMap["REDIS_CONN_STRING"]; ok && configValue != "" {
		RedisConnString = configValue
	}

	if configValue, ok := configMap["ADMIN_EMAIL"]; ok && configValue != "" {
		AdminEmail = configValue
	}

	if configValue, ok := configMap["ADMIN_PASSWORD"]; ok && configValue != "" {
		AdminPassword = configValue
	}

	if configValue, ok := configMap["PORT"]; ok && configValue != "" {
		portInt, err := strconv.Atoi(configValue)
		if err != nil {
			return fmt.Errorf("invalid value for PORT: %w", err)
		}
		*Port = portInt
	}

	if configValue, ok := configMap["DELETE_REMOVES_FILE"]; ok && configValue != "" {
		removeBool, err := strconv.ParseBool(configValue)
		if err != nil {
			return fmt.Errorf("invalid value for DELETE_REMOVES_FILE: %w", err)
		}
		DeleteRemovesFile = removeBool
	}

	if configValue, ok := configMap["ITEMS_PER_PAGE"]; ok && configValue != "" {
		perPage, err := strconv.Atoi(configValue)
		if err != nil || perPage <= 0 {
			return fmt.Errorf("invalid value for ITEMS_PER_PAGE: %q", configValue)
		}
		ItemsPerPage = perPage
	}

	if configValue, ok := configMap["LOG_LEVEL"]; ok && configValue != "" {
		LogLevel = strings.ToLower(configValue)
	}

	return nil
}
