package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/NomadCrew/crewtrip-backend/config"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type envReader map[string]string

func (e envReader) get(key, defaultValue string) string {
	if v := e[key]; v != "" {
		return v
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func (e envReader) getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(e.get(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(e.get(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func (e envReader) required(key string, minLen int) (string, error) {
	value := e.get(key, "")
	if value == "" {
		return "", fmt.Errorf("%s is not set in your .env file", key)
	}
	if len(value) < minLen {
		return "", fmt.Errorf("%s is too short: need at least %d characters, got %d", key, minLen, len(value))
	}
	return value, nil
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}

func main() {
	vars, err := godotenv.Read(".env")
	if err != nil {
		fmt.Println("ERROR: .env file not found or unreadable!")
		fmt.Println("Create one from the example and fill in the required values:")
		fmt.Println("cp .env.example .env")
		os.Exit(1)
	}
	env := envReader(vars)

	environment := "development"
	if len(os.Args) > 1 {
		environment = os.Args[1]
	}

	var cfg config.Config

	cfg.Server.Environment = config.Environment(env.get("SERVER_ENVIRONMENT", environment))
	cfg.Server.Port = env.get("PORT", "8080")
	cfg.Server.AllowedOrigins = strings.Split(env.get("ALLOWED_ORIGINS", "*"), ",")
	cfg.Server.FrontendURL = env.get("FRONTEND_URL", "https://crewtrip.app")
	cfg.Server.Version = env.get("APP_VERSION", "dev")
	if cfg.Server.JwtSecretKey, err = env.required("JWT_SECRET_KEY", 32); err != nil {
		fail(err)
	}

	cfg.Database.Host = env.get("DB_HOST", "postgres")
	cfg.Database.Port = env.getInt("DB_PORT", 5432)
	cfg.Database.User = env.get("DB_USER", "postgres")
	cfg.Database.Name = env.get("DB_NAME", "crewtrip")
	cfg.Database.MaxConnections = env.getInt("DB_MAX_CONNECTIONS", 20)
	cfg.Database.SSLMode = env.get("DB_SSL_MODE", "disable")
	cfg.Database.ConnMaxLife = "1h"
	if cfg.Database.Password, err = env.required("DB_PASSWORD", 8); err != nil {
		fail(err)
	}

	cfg.Redis.Address = env.get("REDIS_ADDRESS", "redis:6379")
	cfg.Redis.Password = env.get("REDIS_PASSWORD", "")
	cfg.Redis.UseTLS = env.getBool("REDIS_USE_TLS", false)
	cfg.Redis.PoolSize = 5
	cfg.Redis.MinIdleConns = 1

	cfg.Email.Enabled = env.getBool("EMAIL_ENABLED", true)
	cfg.Email.FromAddress = env.get("EMAIL_FROM_ADDRESS", "trips@crewtrip.app")
	cfg.Email.FromName = env.get("EMAIL_FROM_NAME", "CrewTrip")
	if cfg.Email.Enabled {
		if cfg.Email.ResendAPIKey, err = env.required("RESEND_API_KEY", 8); err != nil {
			fail(err)
		}
	}

	cfg.EventService.PublishTimeoutSeconds = 5
	cfg.EventService.SubscribeTimeoutSeconds = 10
	cfg.EventService.EventBufferSize = 100
	cfg.RateLimit.RequestsPerMinute = env.getInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120)
	cfg.RateLimit.WindowSeconds = 60
	cfg.WorkerPool.MaxWorkers = env.getInt("WORKER_POOL_MAX_WORKERS", 4)
	cfg.WorkerPool.QueueSize = 500
	cfg.WorkerPool.ShutdownTimeoutSeconds = 30

	cfg.Storage.Enabled = env.getBool("STORAGE_ENABLED", false)
	cfg.Storage.Bucket = env.get("STORAGE_BUCKET", "")
	cfg.Storage.Region = env.get("STORAGE_REGION", "auto")
	cfg.Storage.Endpoint = env.get("STORAGE_ENDPOINT", "")
	cfg.Storage.AccessKeyID = env.get("STORAGE_ACCESS_KEY_ID", "")
	cfg.Storage.SecretAccessKey = env.get("STORAGE_SECRET_ACCESS_KEY", "")
	cfg.Storage.PresignTTLMinutes = 15
	cfg.Storage.MaxUploadMB = 10

	cfg.ExternalServices.PexelsAPIKey = env.get("PEXELS_API_KEY", "")
	cfg.ExternalServices.CountriesBaseURL = env.get("COUNTRIES_BASE_URL", "https://restcountries.com/v3.1")
	cfg.ExternalServices.CountryCacheTTLHours = 24
	cfg.Budget.BaseDailyUSD = env.get("BUDGET_BASE_DAILY_USD", "120.00")
	cfg.NewRelic.AppName = env.get("NEW_RELIC_APP_NAME", "crewtrip-backend")
	cfg.NewRelic.LicenseKey = env.get("NEW_RELIC_LICENSE_KEY", "")

	yamlData, err := yaml.Marshal(&cfg)
	if err != nil {
		fail(fmt.Errorf("marshaling YAML: %w", err))
	}

	if err := os.MkdirAll("config", 0o755); err != nil {
		fail(fmt.Errorf("creating config directory: %w", err))
	}

	filename := fmt.Sprintf("config/config.%s.yaml", environment)
	if err := os.WriteFile(filename, yamlData, 0o600); err != nil {
		fail(fmt.Errorf("writing config file: %w", err))
	}

	fmt.Printf("Successfully generated %s\n", filename)
}
