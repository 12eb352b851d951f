// Package config содержит логику чтения конфигурации банкомата.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress            = "localhost:8080"
	defaultAccountNumberAttempts = 1000
	defaultLogLevel              = "info"
)

// DefaultServices перечисляет услуги, доступные для оплаты по умолчанию.
var DefaultServices = []string{"Water", "Electricity", "Internet", "Telephone"}

// Config содержит параметры конфигурации банкомата.
type Config struct {
	RunAddress            string   `env:"RUN_ADDRESS"`
	AuthSecret            string   `env:"AUTH_SECRET"`
	AccountNumberAttempts int      `env:"ACCOUNT_NUMBER_ATTEMPTS"`
	LogLevel              string   `env:"LOG_LEVEL"`
	Services              []string `env:"PAYABLE_SERVICES" envSeparator:","`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envAuthSecret := cfg.AuthSecret
	envAttempts := cfg.AccountNumberAttempts
	envLogLevel := cfg.LogLevel

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret key for session cookies")
	flag.IntVar(&cfg.AccountNumberAttempts, "n", defaultAccountNumberAttempts, "max attempts to find a free account number")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envAttempts != 0 {
		cfg.AccountNumberAttempts = envAttempts
	}
	if envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.AccountNumberAttempts <= 0 {
		return nil, fmt.Errorf("account number attempts must be positive, got %d", cfg.AccountNumberAttempts)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	cfg.Services = normalizeServices(cfg.Services)
	if len(cfg.Services) == 0 {
		cfg.Services = append([]string(nil), DefaultServices...)
	}

	return cfg, nil
}

// normalizeServices обрезает пробелы вокруг названий и отбрасывает пустые.
func normalizeServices(raw []string) []string {
	var services []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			services = append(services, s)
		}
	}
	return services
}
