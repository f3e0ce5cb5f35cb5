package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	AppHost                string        `yaml:"app_host"                 env:"APP_HOST"                 env-default:"127.0.0.1"`
	AppPort                string        `yaml:"app_port"                 env:"APP_PORT"                 env-default:"8080"`
	DatabaseDSN            string        `yaml:"database_dsn"             env:"DATABASE_DSN"             env-default:"nextlevel.db"`
	RateLimit              int           `yaml:"rate_limit_per_minute"    env:"RATE_LIMIT_PER_MINUTE"    env-default:"60"`
	ShutdownTimeoutSeconds int           `yaml:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"20"`
	JWTSecret              string        `yaml:"jwt_secret"               env:"AUTH_JWT_SECRET"`
	JWTIssuer              string        `yaml:"jwt_issuer"               env:"AUTH_JWT_ISSUER"`
	CronSecret             string        `yaml:"cron_secret"              env:"CRON_SECRET"`
	WebhookSecret          string        `yaml:"webhook_secret"           env:"WEBHOOK_SECRET"`
	RedisAddr              string        `yaml:"redis_addr"               env:"REDIS_ADDR"`
	UserLockTTL            time.Duration `yaml:"user_lock_ttl"            env:"USER_LOCK_TTL"            env-default:"10s"`
	UserLockWait           time.Duration `yaml:"user_lock_wait"           env:"USER_LOCK_WAIT"           env-default:"3s"`
	AMQPURL                string        `yaml:"amqp_url"                 env:"AMQP_URL"`
	EventsQueue            string        `yaml:"events_queue"             env:"EVENTS_QUEUE"             env-default:"nextlevel.events"`
	SweepSchedule          string        `yaml:"sweep_schedule"           env:"SWEEP_SCHEDULE"`
	SweepTimezone          string        `yaml:"sweep_timezone"           env:"SWEEP_TIMEZONE"           env-default:"UTC"`
	LLMAPIKey              string        `yaml:"llm_api_key"              env:"LLM_API_KEY"`
	LLMModel               string        `yaml:"llm_model"                env:"LLM_MODEL"                env-default:"claude-haiku-4-5"`
	LogLevel               string        `yaml:"log_level"                env:"LOG_LEVEL"                env-default:"info"`
	LogFormat              string        `yaml:"log_format"               env:"LOG_FORMAT"               env-default:"json"`
}

// AppURL is the listen address handed to echo.
func (c Config) AppURL() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// Location resolves SweepTimezone. Load has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SweepTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads .env (if any), then CONFIG_PATH (if set) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.AppPort == "" {
		return errors.New("APP_PORT must not be empty (e.g. 8080)")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.UserLockTTL <= 0 {
		return errors.New("USER_LOCK_TTL must be greater than 0")
	}
	if _, err := time.LoadLocation(cfg.SweepTimezone); err != nil {
		return fmt.Errorf("SWEEP_TIMEZONE %q: %w", cfg.SweepTimezone, err)
	}
	if cfg.SweepSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.SweepSchedule); err != nil {
			return fmt.Errorf("SWEEP_SCHEDULE %q: %w", cfg.SweepSchedule, err)
		}
	}
	return nil
}
