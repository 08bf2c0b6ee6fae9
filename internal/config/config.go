package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the server reads from the environment. Every
// field has a development default so a bare `go run` works out of the box.
type Config struct {
	Port                string
	Env                 string
	DatabaseDSN         string
	JWTSecret           string
	JWTExpire           time.Duration
	JWTCookieExpireDays int
	MaxFileUpload       int64
	FileUploadPath      string
	GeocoderURL         string
	GeocoderTimeout     time.Duration
	MailerTimeout       time.Duration
	CORSOrigin          string
}

func Load() Config {
	return Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("APP_ENV", "development"),
		DatabaseDSN:         getEnv("DATABASE_DSN", "file:devcamper.db"),
		JWTSecret:           getEnv("JWT_SECRET", "devjwtsecret"),
		JWTExpire:           parseDuration("JWT_EXPIRE", 30*24*time.Hour),
		JWTCookieExpireDays: parseInt("JWT_COOKIE_EXPIRE", 30),
		MaxFileUpload:       int64(parseInt("MAX_FILE_UPLOAD", 1_000_000)),
		FileUploadPath:      getEnv("FILE_UPLOAD_PATH", "./public/uploads"),
		GeocoderURL:         getEnv("GEOCODER_URL", ""),
		GeocoderTimeout:     parseDuration("GEOCODER_TIMEOUT", 5*time.Second),
		MailerTimeout:       parseDuration("MAILER_TIMEOUT", 5*time.Second),
		CORSOrigin:          getEnv("CORS_ORIGIN", "*"),
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
