package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	DBConnectionString string
	TickInterval       time.Duration
	EnforceStepGates   bool
	PurgeSchedule      string
}

func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	dbConnStr := getEnv("DB_CONNECTION_STRING", "")
	purgeSchedule := getEnv("PURGE_SCHEDULE", "")

	tickMS, err := strconv.Atoi(getEnv("TICK_INTERVAL_MS", "1000"))
	if err != nil {
		return nil, err
	}

	enforceGates, err := strconv.ParseBool(getEnv("ENFORCE_STEP_GATES", "false"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               port,
		DBConnectionString: dbConnStr,
		TickInterval:       time.Duration(tickMS) * time.Millisecond,
		EnforceStepGates:   enforceGates,
		PurgeSchedule:      purgeSchedule,
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
