package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port       string
	Env        string
	LogLevel   string
	APIBaseURL string

	// DataDir holds the client-side key-value store (visitor identity and
	// the legacy enquiry cache). UseMemoryStore replaces it with an
	// in-process map, losing state across restarts.
	DataDir        string
	UseMemoryStore bool

	// Per-widget poll intervals. The defaults mirror the cadence the site
	// has always used: chat refreshes fastest, schedule data slowest.
	VisitorChatPoll   time.Duration
	AdminRosterPoll   time.Duration
	AdminMessagesPoll time.Duration
	SchedulePoll      time.Duration
	EnquiriesPoll     time.Duration
	BansPoll          time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:8080"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		UseMemoryStore:    getEnvAsBool("USE_MEMORY_STORE", false),
		VisitorChatPoll:   getEnvAsDuration("VISITOR_CHAT_POLL", 8*time.Second),
		AdminRosterPoll:   getEnvAsDuration("ADMIN_ROSTER_POLL", 7*time.Second),
		AdminMessagesPoll: getEnvAsDuration("ADMIN_MESSAGES_POLL", 6*time.Second),
		SchedulePoll:      getEnvAsDuration("SCHEDULE_POLL", 20*time.Second),
		EnquiriesPoll:     getEnvAsDuration("ENQUIRIES_POLL", 15*time.Second),
		BansPoll:          getEnvAsDuration("BANS_POLL", 12*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
