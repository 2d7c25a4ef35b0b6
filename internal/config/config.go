package config

import (
	"strings"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type StoreDriver string

const (
	StoreDriverSupabase StoreDriver = "supabase"
	StoreDriverPostgres StoreDriver = "postgres"
)

type CacheDriver string

const (
	CacheDriverLru   CacheDriver = "lru"
	CacheDriverRedis CacheDriver = "redis"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Moscow"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"slots_resolver:slots_resolver"`
		BasicClients       []ConfigBasicClient
	}

	Store struct {
		Driver StoreDriver `env:"STORE_DRIVER" envDefault:"supabase"`
	}

	Supabase struct {
		URL            string `env:"SUPABASE_URL"`
		AnonKey        string `env:"SUPABASE_ANON_KEY"`
		ServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	}

	Postgres struct {
		Dsn     string `env:"POSTGRES_DSN"`
		Migrate bool   `env:"POSTGRES_MIGRATE"`
	}

	RabbitMq struct {
		Enabled     bool   `env:"RABBITMQ_ENABLED"`
		AmqpUri     string `env:"RABBITMQ_URL"`
		QueueConfig struct {
			AppointmentQueueName     string `env:"RABBITMQ_APPOINTMENT_QUEUE" envDefault:"slots-resolver.appointment"`
			AppointmentQueueBind     string `env:"RABBITMQ_APPOINTMENT_BIND" envDefault:"supabase.slots-resolver.appointment.*.*"`
			AppointmentQueueExchange string `env:"RABBITMQ_APPOINTMENT_EXCHANGE" envDefault:"supabase.cache-hit"`

			ScheduleQueueName     string `env:"RABBITMQ_SCHEDULE_QUEUE" envDefault:"slots-resolver.schedule"`
			ScheduleQueueBind     string `env:"RABBITMQ_SCHEDULE_BIND" envDefault:"supabase.slots-resolver.*.*.*"`
			ScheduleQueueExchange string `env:"RABBITMQ_SCHEDULE_EXCHANGE" envDefault:"supabase.cache-hit"`

			AllQueueName     string `env:"RABBITMQ_ALL_QUEUE" envDefault:"slots-resolver._all_"`
			AllQueueBind     string `env:"RABBITMQ_ALL_BIND" envDefault:"supabase.slots-resolver._all_.*.*"`
			AllQueueExchange string `env:"RABBITMQ_ALL_EXCHANGE" envDefault:"supabase.cache-hit"`
		}
	}

	Cache struct {
		Enabled            bool        `env:"CACHE_ENABLED"`
		Driver             CacheDriver `env:"CACHE_DRIVER" envDefault:"lru"`
		SlotsSize          int         `env:"CACHE_SLOTS_SIZE" envDefault:"1000"`
		SettingsTtlMinutes int         `env:"CACHE_SETTINGS_TTL_MINUTES" envDefault:"30"`
		RedisAddr          string      `env:"CACHE_REDIS_ADDR"`
		RedisPassword      string      `env:"CACHE_REDIS_PASSWORD"`
		RedisTtlMinutes    int         `env:"CACHE_REDIS_TTL_MINUTES" envDefault:"10"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Разбор клиентов базовой авторизации
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	// Без RabbitMQ кэш некому инвалидировать, поэтому не включаем его
	if !cfg.RabbitMq.Enabled {
		cfg.Cache.Enabled = false
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
