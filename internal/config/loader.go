package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Env             string `mapstructure:"env"`
	Port            int    `mapstructure:"port"`
	ShutdownSeconds int    `mapstructure:"shutdown_timeout_seconds"`
}

func (a *AppConfig) PortString() string { return fmt.Sprintf("%d", a.Port) }

func (a *AppConfig) Development() bool { return a.Env == "development" }

type TelegramConfig struct {
	Token                  string `mapstructure:"token"`
	APIURL                 string `mapstructure:"api_url"`
	WebhookSecret          string `mapstructure:"webhook_secret"`
	TimeoutSeconds         int    `mapstructure:"timeout_seconds"`
	RetryMaxElapsedSeconds int    `mapstructure:"retry_max_elapsed_seconds"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type CronConfig struct {
	Maintenance string `mapstructure:"maintenance"`
	OffFromWork string `mapstructure:"off_from_work"`
	Archive     string `mapstructure:"archive"`
}

type StatsConfig struct {
	WindowHours           int `mapstructure:"window_hours"`
	RetentionHours        int `mapstructure:"retention_hours"`
	CommandCooldownSecond int `mapstructure:"command_cooldown_seconds"`
	TopLimit              int `mapstructure:"top_limit"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

type ArchiveConfig struct {
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Endpoint string `mapstructure:"endpoint"` // e.g. MinIO; empty for AWS
}

func (a *ArchiveConfig) Enabled() bool { return a.Bucket != "" }

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Cron      CronConfig      `mapstructure:"cron"`
	Stats     StatsConfig     `mapstructure:"stats"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Archive   ArchiveConfig   `mapstructure:"archive"`

	// derived
	ShutdownTimeout time.Duration `mapstructure:"-"`
	TelegramTimeout time.Duration `mapstructure:"-"`
	RetryMaxElapsed time.Duration `mapstructure:"-"`
	Window          time.Duration `mapstructure:"-"`
	Retention       time.Duration `mapstructure:"-"`
	CommandCooldown time.Duration `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout_seconds", 10)
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.timeout_seconds", 10)
	v.SetDefault("telegram.retry_max_elapsed_seconds", 30)
	v.SetDefault("mongo.database", "jungbot")
	v.SetDefault("mongo.collection", "messages")
	v.SetDefault("redis.prefix", "jung")
	v.SetDefault("kafka.topic", "jung.jobs")
	v.SetDefault("kafka.group_id", "jungbot-worker")
	v.SetDefault("cron.maintenance", "@hourly")
	v.SetDefault("cron.off_from_work", "*/15 * * * *")
	v.SetDefault("cron.archive", "@daily")
	v.SetDefault("stats.window_hours", 7*24)
	v.SetDefault("stats.retention_hours", 8*24)
	v.SetDefault("stats.command_cooldown_seconds", 60)
	v.SetDefault("stats.top_limit", 10)
	v.SetDefault("rate_limit.per_minute", 600)
	v.SetDefault("rate_limit.burst", 50)
	v.SetDefault("archive.region", "ap-east-1")
	v.SetDefault("archive.prefix", "reports")
}

// Load reads path (optional) and the JUNG_* environment, e.g.
// JUNG_TELEGRAM_TOKEN overrides telegram.token. A .env file in the working
// directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("JUNG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// AutomaticEnv only resolves keys viper already knows about
	for _, k := range []string{"telegram.token", "telegram.webhook_secret", "mongo.uri", "redis.addr", "redis.password", "kafka.brokers", "jwt.secret", "archive.bucket", "archive.endpoint"} {
		_ = v.BindEnv(k)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(c.Kafka.Brokers) == 1 && strings.Contains(c.Kafka.Brokers[0], ",") {
		c.Kafka.Brokers = strings.Split(c.Kafka.Brokers[0], ",")
	}

	c.ShutdownTimeout = time.Duration(c.App.ShutdownSeconds) * time.Second
	c.TelegramTimeout = time.Duration(c.Telegram.TimeoutSeconds) * time.Second
	c.RetryMaxElapsed = time.Duration(c.Telegram.RetryMaxElapsedSeconds) * time.Second
	c.Window = time.Duration(c.Stats.WindowHours) * time.Hour
	c.Retention = time.Duration(c.Stats.RetentionHours) * time.Hour
	c.CommandCooldown = time.Duration(c.Stats.CommandCooldownSecond) * time.Second

	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validate(c *Config) error {
	if c.App.Port <= 0 {
		return errors.New("app.port missing or invalid")
	}
	if c.Telegram.Token == "" {
		return errors.New("telegram.token missing")
	}
	if c.Mongo.URI == "" {
		return errors.New("mongo.uri missing")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr missing")
	}
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers missing")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret missing")
	}
	if c.Stats.WindowHours <= 0 {
		return errors.New("stats.window_hours must be positive")
	}
	if c.Retention < c.Window {
		return errors.New("stats.retention_hours must cover stats.window_hours")
	}
	return nil
}
