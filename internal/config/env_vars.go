package config

import (
	"os"
	"strconv"
	"time"
)

const (
	appNameVar           = "APP_NAME"
	apiBaseURLVar        = "API_BASE_URL"
	landingURLVar        = "LANDING_URL"
	storagePathVar       = "SESSION_DB"
	inactivityMinutesVar = "INACTIVITY_TIMEOUT_MINUTES"
	checkMinutesVar      = "ACTIVITY_CHECK_MINUTES"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Session Watch")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetInactivityTimeout returns how long a session may go without detected
// activity before it is considered expired.
func (EnvVars) GetInactivityTimeout() time.Duration {
	return minutesEnv(inactivityMinutesVar, 60)
}

// GetCheckInterval returns the period of the background inactivity check.
func (EnvVars) GetCheckInterval() time.Duration {
	return minutesEnv(checkMinutesVar, 5)
}

// GetLandingURL returns the public landing surface used as the post-logout
// redirect target.
func (EnvVars) GetLandingURL() string {
	return GetEnv(landingURLVar, "http://localhost:3000/")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (EnvVars) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (EnvVars) GetGoogleRedirectURL() string {
	return GetEnv("GOOGLE_REDIRECT_URL", "")
}

func (EnvVars) GetStoragePath() string {
	return GetEnv(storagePathVar, "./data/session.db")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func minutesEnv(envVar string, defaultMinutes int) time.Duration {
	minutes := defaultMinutes
	if value := os.Getenv(envVar); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			minutes = parsed
		}
	}
	return time.Duration(minutes) * time.Minute
}
