package common

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not configured")

func PrintHelp() {
	fmt.Println("MediaFeed " + Version + " - minimal media sharing backend")
	fmt.Println("Usage: mediafeed [--port <port>] [--config <file>] [--log-dir <dir>] [--version] [--help]")
	flag.PrintDefaults()
}

// LoadConfig applies the config file and then the environment on top of the
// built-in defaults. An explicit --port flag wins over both.
func LoadConfig() error {
	configPath := *ConfigPath
	if configPath == "" {
		var err error
		configPath, err = defaultConfigPath()
		if err != nil {
			return err
		}
	}

	configMap, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}
	overlayEnv(configMap)

	portFlagSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "port" {
			portFlagSet = true
		}
	})
	port := *Port

	if err := applyConfigMap(configMap); err != nil {
		return fmt.Errorf("apply config file %s: %w", configPath, err)
	}
	if portFlagSet {
		*Port = port
	}

	if JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if RedisConnString == "" {
		RedisEnabled = false
	}

	if err := os.MkdirAll(UploadPath, 0o750); err != nil {
		return fmt.Errorf("create upload directory %s: %w", UploadPath, err)
	}
	return nil
}
