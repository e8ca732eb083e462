package config

import "time"

// Default values for configuration.
const (
	// Config file defaults
	DefaultConfigFile = "config.yml"

	// Telegram defaults
	DefaultAPIID                  = 2109835
	DefaultAPIHash                = "3cd5aae58fe1f3803f08f6a954602a22"
	DefaultDatabaseDirectory      = "~/.tdlib"
	DefaultSystemLanguageCode     = "en"
	DefaultDeviceModel            = "Desktop"
	DefaultApplicationVersion     = "1.0"
	DefaultUseMessageDatabase     = true
	DefaultUseSecretChats         = false
	DefaultEnableStorageOptimizer = true
	DefaultWorkers                = 4
	DefaultMTProtoLogLevel        = "info"
	DefaultEntityTTL              = 0 * time.Second

	// Sender defaults
	DefaultAmount           = 1
	DefaultStrategy         = "random"
	DefaultAuthPollTimeout  = 1 * time.Second
	DefaultEventWaitTimeout = 10 * time.Second
	DefaultSendPause        = 1 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

func defaultConfig() *Config {
	return &Config{
		Telegram: Telegram{
			APIID:                  DefaultAPIID,
			APIHash:                DefaultAPIHash,
			DatabaseDirectory:      DefaultDatabaseDirectory,
			SystemLanguageCode:     DefaultSystemLanguageCode,
			DeviceModel:            DefaultDeviceModel,
			ApplicationVersion:     DefaultApplicationVersion,
			UseMessageDatabase:     DefaultUseMessageDatabase,
			UseSecretChats:         DefaultUseSecretChats,
			EnableStorageOptimizer: DefaultEnableStorageOptimizer,
			Workers:                DefaultWorkers,
			MTProtoLogLevel:        DefaultMTProtoLogLevel,
			EntityTTL:              DefaultEntityTTL,
		},
		Sender: Sender{
			Amount:           DefaultAmount,
			Strategy:         DefaultStrategy,
			AuthPollTimeout:  DefaultAuthPollTimeout,
			EventWaitTimeout: DefaultEventWaitTimeout,
			SendPause:        DefaultSendPause,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
