package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the events
// service.
type Config struct {
	SQLiteDSN       string
	BusyTimeout     time.Duration
	DefaultTimezone string
	MaxHorizonDays  int
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields and reports every
// invalid entry in one error so misconfigured deployments fail fast.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:       "file:community-events.db?_foreign_keys=on",
		BusyTimeout:     5 * time.Second,
		DefaultTimezone: "UTC",
		MaxHorizonDays:  90,
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("COMMUNITY_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("COMMUNITY_SQLITE_BUSY_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout < 0 {
			invalid = append(invalid, "COMMUNITY_SQLITE_BUSY_TIMEOUT")
		} else {
			cfg.BusyTimeout = timeout
		}
	}

	if zone := strings.TrimSpace(os.Getenv("COMMUNITY_DEFAULT_TIMEZONE")); zone != "" {
		if _, err := time.LoadLocation(zone); err != nil {
			invalid = append(invalid, "COMMUNITY_DEFAULT_TIMEZONE")
		} else {
			cfg.DefaultTimezone = zone
		}
	}

	if daysValue := strings.TrimSpace(os.Getenv("COMMUNITY_MAX_HORIZON_DAYS")); daysValue != "" {
		days, err := strconv.Atoi(daysValue)
		if err != nil || days <= 0 {
			invalid = append(invalid, "COMMUNITY_MAX_HORIZON_DAYS")
		} else {
			cfg.MaxHorizonDays = days
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
