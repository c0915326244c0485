package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	BackendConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type SessionConfig interface {
	GetInactivityTimeout() time.Duration
	GetCheckInterval() time.Duration
	GetLandingURL() string
}

type BackendConfig interface {
	GetAPIBaseURL() string
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
}

type StorageConfig interface {
	GetStoragePath() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
