package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (validation only; tokens are issued by the identity service)
	JWTSecret string

	// Classification
	OpenAIAPIKey string
	OpenAIModel  string
	AITimeout    time.Duration

	// Geocoding
	GeocodingAPIKey string
	GeocodingURL    string
	City            string
	MinLatitude     float64
	MaxLatitude     float64
	MinLongitude    float64
	MaxLongitude    float64

	// Density clustering
	CoordTolerance float64

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "urbanai_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:    parseDuration(getEnv("AI_TIMEOUT", "30s")),

		GeocodingAPIKey: getEnv("GEOCODING_API_KEY", ""),
		GeocodingURL:    getEnv("GEOCODING_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
		City:            getEnv("CITY_NAME", "Timisoara"),
		MinLatitude:     parseFloat(getEnv("MIN_LATITUDE", "45.70"), 45.70),
		MaxLatitude:     parseFloat(getEnv("MAX_LATITUDE", "45.81"), 45.81),
		MinLongitude:    parseFloat(getEnv("MIN_LONGITUDE", "21.12"), 21.12),
		MaxLongitude:    parseFloat(getEnv("MAX_LONGITUDE", "21.32"), 21.32),

		CoordTolerance: parseFloat(getEnv("COORD_TOLERANCE", "0.0001"), 0.0001),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
