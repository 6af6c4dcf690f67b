package config

import (
	"fmt"
	"os"
)

type Config struct {
	DatabaseURL     string
	TemporalAddress string
	AMQPURL         string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string
	ServiceName     string
	// AdminPrincipal is the governance-side principal granted access to
	// every registered data product location.
	AdminPrincipal string
	// S3Endpoint points location verification at the object store holding
	// data product locations. Empty disables verification.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		TemporalAddress: getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		AMQPURL:         getEnv("AMQP_URL", ""),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:     getEnv("METRICS_ADDR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ServiceName:     getEnv("SERVICE_NAME", ""),
		AdminPrincipal:  getEnv("ADMIN_PRINCIPAL", "governance-admin"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
	}

	return cfg, nil
}

// Validate checks that the config carries everything the named component
// needs to start.
func (c *Config) Validate(component string) error {
	switch component {
	case "governance-api", "worker":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%s requires DATABASE_URL", component)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
