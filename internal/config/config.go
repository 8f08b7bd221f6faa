package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries every environment-configured parameter of the service.
type Config struct {
	App      App
	Database Database
	Redis    Redis
	AMQP     AMQP
	JWT      JWT
	Saga     Saga
	Paging   Paging
}

type App struct {
	Port        string `env:"PORT" env-default:"8083"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	OTLPAddr    string `env:"OTLP_GRPC_ADDR" env-default:""`
}

type Database struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER" env-default:"travel_user"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `env:"POSTGRES_DB" env-default:"travel_service"`
	SSLMode  string `env:"POSTGRES_SSLMODE" env-default:"disable"`
}

func (d Database) DSN() string {
	return fmt.Sprintf(
		`host=%s port=%s user=%s password=%s dbname=%s sslmode=%s`,
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type Redis struct {
	Addr string `env:"REDIS_ADDR" env-default:""`
}

type AMQP struct {
	URL      string `env:"AMQP_URL" env-default:""`
	Exchange string `env:"AMQP_EXCHANGE" env-default:"travel_events"`
}

type JWT struct {
	Secret string `env:"JWT_SECRET" env-default:"dev-secret"`
}

type Saga struct {
	WindowMS int `env:"ACTIVITY_LOG_WINDOW_MS" env-default:"5000"`
}

func (s Saga) Window() time.Duration {
	return time.Duration(s.WindowMS) * time.Millisecond
}

type Paging struct {
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" env-default:"20"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" env-default:"50"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment variables: %w", err)
	}
	return cfg, nil
}
