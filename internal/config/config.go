package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string
	Scheduling  SchedulingConfig
}

// SchedulingConfig holds the policy knobs for the booking engine. Defaults
// match the standard depot schedule: weekdays 08:00-17:00, weekends closed.
type SchedulingConfig struct {
	DefaultOpen   string
	DefaultClose  string
	WeekendClosed bool

	MinLeadTime time.Duration
	MaxAdvance  time.Duration

	// Origin is the depot the distance annotation is measured from.
	OriginLat float64
	OriginLng float64
	// RoadFactor converts great-circle miles into an estimated road distance.
	RoadFactor float64

	// CommitRetries bounds internal retries when a commit loses a race.
	CommitRetries int

	PostalCacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Scheduling: SchedulingConfig{
			DefaultOpen:    getEnv("HOURS_OPEN", "08:00"),
			DefaultClose:   getEnv("HOURS_CLOSE", "17:00"),
			WeekendClosed:  getEnvBool("WEEKEND_CLOSED", true),
			MinLeadTime:    getEnvDuration("MIN_LEAD_TIME", 2*time.Hour),
			MaxAdvance:     getEnvDuration("MAX_ADVANCE", 30*24*time.Hour),
			OriginLat:      getEnvFloat("ORIGIN_LAT", 35.2271),
			OriginLng:      getEnvFloat("ORIGIN_LNG", -80.8431),
			RoadFactor:     getEnvFloat("ROAD_FACTOR", 1.25),
			CommitRetries:  getEnvInt("COMMIT_RETRIES", 3),
			PostalCacheTTL: getEnvDuration("POSTAL_CACHE_TTL", 24*time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
