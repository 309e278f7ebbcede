package env

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

var Env map[string]string

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetDuration parses a duration such as "24h" or "30m". Invalid values fall back to def.
func GetDuration(key string, def time.Duration) time.Duration {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warnf("[Env] Invalid duration for %s: %q, using %s", key, raw, def)
		return def
	}
	return d
}

// GetInt parses a non-negative integer. Invalid values fall back to def.
func GetInt(key string, def int) int {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Warnf("[Env] Invalid number for %s: %q, using %d", key, raw, def)
		return def
	}
	return n
}

func SetupEnvFile() {
	// Look for .env file in project root
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/haroohub to project root
		"../../../.env", // Fallback for deeper nesting
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	// Containers usually pass plain environment variables
	Env = map[string]string{}
	log.Warn("[Env] No .env file found, using process environment only")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
