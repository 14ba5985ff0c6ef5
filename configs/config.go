package config

import (
	"fmt"
	"os"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	BlueskyIdentifier string
	BlueskyPassword   string
	BlueskyHost       string
	SpreadsheetID     string
	CalendarTabs      []string
	GoogleCredentials string
	EmberAPIKey       string
	EmberBaseURL      string
	EmberCountries    []string
	PostgresURI       string
	RedisURI          string
	R2                R2
	AdminAPIKey       string
	DispatchCron      string
	RefreshCron       string
}

func LoadConfig() *Config {
	return &Config{
		BlueskyIdentifier: getEnv("BLUESKY_IDENTIFIER", ""),
		BlueskyPassword:   getEnv("BLUESKY_PASSWORD", ""),
		BlueskyHost:       getEnv("BLUESKY_HOST", "https://bsky.social"),
		SpreadsheetID:     getEnv("SPREADSHEET_ID", ""),
		CalendarTabs:      splitList(getEnv("CALENDAR_TABS", "Peak Share,Peak Generation")),
		GoogleCredentials: getEnv("GOOGLE_CREDENTIALS", "credentials.json"),
		EmberAPIKey:       getEnv("EMBER_API_KEY", ""),
		EmberBaseURL:      getEnv("EMBER_BASE_URL", "https://api.ember-energy.org"),
		EmberCountries:    splitList(getEnv("EMBER_COUNTRIES", "CAN")),
		PostgresURI:       getEnv("POSTGRES_URI", ""),
		RedisURI:          getEnv("REDIS_URI", "127.0.0.1:6379"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		AdminAPIKey:  getEnv("ADMIN_API_KEY", ""),
		DispatchCron: getEnv("DISPATCH_CRON", "@every 01h00m00s"),
		RefreshCron:  getEnv("REFRESH_CRON", "@weekly"),
	}
}

// Validate checks the inputs the dispatcher cannot run without. Missing
// posting credentials abort startup instead of surfacing as a failed run later.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"BLUESKY_IDENTIFIER", c.BlueskyIdentifier},
		{"BLUESKY_PASSWORD", c.BlueskyPassword},
		{"SPREADSHEET_ID", c.SpreadsheetID},
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			return fmt.Errorf("missing required configuration: %s", req.name)
		}
	}
	if len(c.CalendarTabs) == 0 {
		return fmt.Errorf("missing required configuration: CALENDAR_TABS")
	}
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
