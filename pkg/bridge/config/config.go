//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package config provides configuration management for the bridge using
// [Viper] for flexible configuration sources.
//
// Configuration can be provided via:
//   - YAML configuration files
//   - Environment variables with the MCB_ prefix
//   - Programmatic defaults
//
// By default the bridge looks for mcb-config.yaml in the current directory.
// Override the location using environment variables:
//
//	MCB_CONFIG_PATH=/etc/cedarbridge
//	MCB_CONFIG_FILENAME=production-config
//
// All configuration keys can also be set via environment variables with the
// MCB_ prefix; dots in key names become underscores:
//
//	MCB_LOG_LEVEL=.:debug
//	MCB_FFI_LIBPATH=/opt/cedar/libcedar_ffi.so
//	MCB_REQUEST_VALIDATE=true
//
// Available configuration options:
//   - log.level: log level configuration (default: ".:info")
//   - ffi.libpath: absolute path to the native engine library; also honors
//     the CEDAR_FFI_LIB environment variable used by the loader directly
//   - request.validate: ask the engine to validate requests against the
//     schema when one is supplied (default: false)
//   - server.bind: listen address used by the serve command
//
// [Viper]: https://github.com/spf13/viper
package config

import (
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/manetu/cedarbridge/internal/logging"
)

// Environment variable and default path constants for configuration loading.
const (
	// EnvVarPrefix is the prefix for all bridge environment variables. For
	// example, the key "log.level" becomes MCB_LOG_LEVEL.
	EnvVarPrefix string = "MCB"

	// ConfigPathEnv names the directory containing the configuration file.
	ConfigPathEnv string = "MCB_CONFIG_PATH"

	// ConfigFileNameEnv names the configuration file (without extension).
	ConfigFileNameEnv string = "MCB_CONFIG_FILENAME"

	ConfigDefaultPath     string = "."
	ConfigDefaultFilename string = "mcb-config"
)

// Configuration key constants for use with [VConfig].
const (
	logLevel string = "log.level"

	// FFILibPath is the absolute path to the native engine binary. When set
	// it is exported as CEDAR_FFI_LIB before the library is loaded, so both
	// configuration routes resolve identically.
	FFILibPath string = "ffi.libpath"

	// RequestValidate asks the engine to validate each authorization
	// request against the supplied schema.
	RequestValidate string = "request.validate"

	// ServerBind is the listen address for the decision point servers.
	ServerBind string = "server.bind"
)

var (
	once     sync.Once
	loadOnce sync.Once
	loadErr  error

	// VConfig is the global Viper configuration instance, initialized by
	// [Init] or [Load].
	VConfig *viper.Viper
	logger  = logging.GetLogger("config")
)

// Init sets up Viper with config-file paths, MCB_ environment handling and
// defaults. Safe to call multiple times; subsequent calls are no-ops.
func Init() {
	once.Do(doInitialize)
}

func getConfigPath() string {
	if configPath, ok := os.LookupEnv(ConfigPathEnv); ok {
		return configPath
	}
	return ConfigDefaultPath
}

func getConfigFileName() string {
	if configName, ok := os.LookupEnv(ConfigFileNameEnv); ok {
		return configName
	}
	return ConfigDefaultFilename
}

func doInitialize() {
	VConfig = viper.New()

	// default is './mcb-config.yaml', overridable with $(MCB_CONFIG_PATH)/$(MCB_CONFIG_FILENAME).yaml
	VConfig.AddConfigPath(getConfigPath())
	VConfig.SetConfigName(getConfigFileName())
	VConfig.SetConfigType("yaml")

	// keys such as 'log.level' become 'MCB_LOG_LEVEL'
	VConfig.SetEnvPrefix(EnvVarPrefix)
	VConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	VConfig.AutomaticEnv()

	VConfig.SetDefault(logLevel, ".:info")
	VConfig.SetDefault(RequestValidate, false)
	VConfig.SetDefault(ServerBind, ":8080")
}

// Load initializes configuration, reads the config file (a missing file is
// not an error), applies environment overrides, updates log levels, and
// exports ffi.libpath for the loader. Safe for concurrent use; calls after
// the first successful load are no-ops.
func Load() error {
	loadOnce.Do(func() {
		Init()

		// Early log level update from the environment lets us debug config loading.
		if early := os.Getenv("MCB_LOG_LEVEL"); early != "" {
			if err := logging.UpdateLogLevels(early); err != nil {
				loadErr = errors.Wrapf(err, "updating early log level %q", early)
				return
			}
		}

		logger.Debugf("Loading configuration from %s/%s.yaml", getConfigPath(), getConfigFileName())
		if err := VConfig.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				logger.Warnf("error reading config; using defaults: %+v", err)
			}
			logger.Debugf("No config file found at %s/%s.yaml", getConfigPath(), getConfigFileName())
		}

		level := VConfig.GetString(logLevel)
		if err := logging.UpdateLogLevels(level); err != nil {
			loadErr = errors.Wrapf(err, "updating log level %q", level)
			return
		}

		if libpath := VConfig.GetString(FFILibPath); libpath != "" && os.Getenv("CEDAR_FFI_LIB") == "" {
			if err := os.Setenv("CEDAR_FFI_LIB", libpath); err != nil {
				loadErr = errors.Wrap(err, "exporting ffi.libpath")
				return
			}
		}
	})

	return loadErr
}

// ResetConfig clears all configuration and reinitializes with defaults.
// Intended for testing only.
func ResetConfig() {
	VConfig = nil
	once = sync.Once{}
	loadOnce = sync.Once{}
	loadErr = nil
	Init()
	_ = Load()
}
