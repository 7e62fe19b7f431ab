package common

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	Env           string
	CantonURL     string
	CantonToken   string
	RegistryURL   string
	JWTSecret     string
	VoucherSeed   string
	MigrationsDir string
	DB            DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func LoadConfig() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("APP_ENV", "development"),
		CantonURL:     getEnv("CANTON_LEDGER_URL", "http://localhost:6865"),
		CantonToken:   getEnv("CANTON_LEDGER_TOKEN", ""),
		RegistryURL:   getEnv("REGISTRY_URL", "http://localhost:8084"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-me"),
		VoucherSeed:   getEnv("VOUCHER_SEED", "0000000000000000000000000000000000000000000000000000000000000000"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", ""),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "loyalty"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}
