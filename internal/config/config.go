package config

import (
	"fmt"
	"os"
	"time"
)

const (
	DefaultTimeZone       = "America/New_York"
	DefaultBackendURL     = "http://localhost:5000"
	DefaultDashAddr       = ":4143"
	DefaultBackendTimeout = 15 * time.Second

	// KPI snapshot refresh, overridable with KPI_REFRESH_SCHEDULE.
	DefaultKPISchedule = "*/5 * * * *"
	KPIInterval        = 5 * time.Minute

	// Weekly production counter shown on the home page.
	UnitsPerInterval    = 1
	UnitInterval        = 4 * time.Minute
	WeeklyProductionCap = 1900

	// Mapping requests listed for corporate, and kept in memory.
	MappingRequestsShown = 20
	MappingRequestsKept  = 200
)

// Env returns the environment value for key, or def when unset.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// PostgresDSN builds a connection string from DB_* variables. It is empty
// when DB_HOST is not set, which disables the Postgres-backed stores.
func PostgresDSN() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, Env("DB_PORT", "5432"), os.Getenv("DB_NAME"),
	)
}

// Location loads tz, falling back to UTC.
func Location(tz string) *time.Location {
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
