package config

import (
	"os"
	"strings"
)

// Config holds all application configuration values
type Config struct {
	Port        string
	Environment string

	// HighLevel CRM credentials and endpoints
	HighLevelAPIKey     string
	HighLevelLocationID string
	HighLevelRestBase   string
	HighLevelAPIBase    string

	// Template used for the hug notification email; optional
	HugTemplateID string

	AllowedOrigins []string
}

const (
	defaultRestBase = "https://rest.gohighlevel.com/v1"
	defaultAPIBase  = "https://services.leadconnectorhq.com"
)

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("APP_ENV", "production"),
		HighLevelAPIKey:     os.Getenv("HIGHLEVEL_API_KEY"),
		HighLevelLocationID: os.Getenv("HIGHLEVEL_LOCATION_ID"),
		HighLevelRestBase:   getEnv("HIGHLEVEL_REST_BASE", defaultRestBase),
		HighLevelAPIBase:    getEnv("HIGHLEVEL_API_BASE", defaultAPIBase),
		HugTemplateID:       os.Getenv("HUG_TEMPLATE_ID"),
		AllowedOrigins:      splitOrigins(getEnv("ALLOWED_ORIGINS", "https://sendahug.com,https://www.sendahug.com")),
	}
}

// IsDevelopment reports whether the app runs in development mode, where
// upstream error details are exposed in API responses.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
