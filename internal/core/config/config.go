package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile // rotation is enabled when Path is set
}

type JWT struct {
	Secret      string
	Issuer      string
	LifetimeMin int
	LeewaySec   int
}

func (j JWT) Lifetime() time.Duration { return time.Duration(j.LifetimeMin) * time.Minute }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Events selects the book event transport: kafka, redis or log.
type Events struct {
	Driver        string
	Topic         string
	Brokers       []string
	Partitions    int
	QueueSize     int
	SendTimeoutMs int
	StreamMaxLen  int64
}

type Limits struct {
	RPS           float64
	Burst         int
	MaxConcurrent int64
	MaxBodyBytes  int64
	TimeoutSec    int
}

type SeedUser struct {
	Login    string
	Password string
	Role     string
}

type Seed struct {
	Users []SeedUser
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Events Events
	Limits Limits
	Seed   Seed
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "online-library")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 14)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "online-library")
	v.SetDefault("jwt.lifetimeMin", 60)
	v.SetDefault("jwt.leewaySec", 60)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("events.driver", "log")
	v.SetDefault("events.topic", "books-topic")
	v.SetDefault("events.partitions", 4)
	v.SetDefault("events.queueSize", 256)
	v.SetDefault("events.sendTimeoutMs", 5000)
	v.SetDefault("events.streamMaxLen", 100000)
	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
	v.SetDefault("limits.timeoutSec", 10)
}

// Read loads path (or CONFIG_PATH, or ./configs/config.local.yaml) with
// APP_-prefixed environment overrides, e.g. APP_JWT_SECRET.
func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load is Read that exits the process on failure.
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	switch c.Events.Driver {
	case "kafka":
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("config: events.brokers is required for the kafka driver")
		}
	case "redis", "log":
	default:
		return fmt.Errorf("config: unknown events.driver %q", c.Events.Driver)
	}
	return nil
}
