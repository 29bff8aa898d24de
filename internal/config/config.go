package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Auth     AuthConfig     `yaml:"auth" envPrefix:"AUTH_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Tasks    TasksConfig    `yaml:"tasks" envPrefix:"TASKS_"`
	Mail     MailConfig     `yaml:"mail" envPrefix:"MAIL_"`
	Firebase FirebaseConfig `yaml:"firebase" envPrefix:"FIREBASE_"`
	Offers   OffersConfig   `yaml:"offers" envPrefix:"OFFERS_"`
}

type ServerConfig struct {
	Address        string        `yaml:"address" env:"ADDRESS"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver" env:"DRIVER"`
	URL          string `yaml:"url" env:"URL"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	AutoMigrate  bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
}

type AuthConfig struct {
	SigningKey      string        `yaml:"signing_key" env:"SIGNING_KEY"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL"`
}

type StorageConfig struct {
	Driver       string   `yaml:"driver" env:"DRIVER"`
	UploadsDir   string   `yaml:"uploads_dir" env:"UPLOADS_DIR"`
	MaxProofSize int64    `yaml:"max_proof_size" env:"MAX_PROOF_SIZE"`
	S3           S3Config `yaml:"s3" envPrefix:"S3_"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket" env:"BUCKET"`
	Region    string `yaml:"region" env:"REGION"`
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	QueueKey string `yaml:"queue_key" env:"QUEUE_KEY"`
}

type TasksConfig struct {
	Workers     int           `yaml:"workers" env:"WORKERS"`
	MaxAttempts int           `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	BaseBackoff time.Duration `yaml:"base_backoff" env:"BASE_BACKOFF"`
	QueueSize   int           `yaml:"queue_size" env:"QUEUE_SIZE"`
}

type MailConfig struct {
	Driver  string `yaml:"driver" env:"DRIVER"`
	From    string `yaml:"from" env:"FROM"`
	Region  string `yaml:"region" env:"REGION"`
	SiteURL string `yaml:"site_url" env:"SITE_URL"`
}

type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file" env:"CREDENTIALS_FILE"`
}

type OffersConfig struct {
	ExpireAfter    time.Duration `yaml:"expire_after" env:"EXPIRE_AFTER"`
	ExpiryInterval time.Duration `yaml:"expiry_interval" env:"EXPIRY_INTERVAL"`
}

// Default returns the configuration used when neither the file nor the
// environment set a value.
func Default() Config {
	var cfg Config
	cfg.Server.Address = ":4001"
	cfg.Server.ReadTimeout = 5 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	cfg.Database.Driver = "mysql"
	cfg.Database.MaxIdleConns = 35
	cfg.Database.MaxOpenConns = 50
	cfg.Auth.AccessTokenTTL = 20 * time.Hour
	cfg.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	cfg.Storage.Driver = "local"
	cfg.Storage.UploadsDir = "./uploads"
	cfg.Storage.MaxProofSize = 10 << 20
	cfg.Redis.QueueKey = "market:tasks"
	cfg.Tasks.Workers = 4
	cfg.Tasks.MaxAttempts = 5
	cfg.Tasks.BaseBackoff = 2 * time.Second
	cfg.Tasks.QueueSize = 256
	cfg.Mail.Driver = "log"
	cfg.Mail.From = "no-reply@localhost"
	cfg.Mail.SiteURL = "http://localhost:3000"
	cfg.Offers.ExpireAfter = 30 * 24 * time.Hour
	cfg.Offers.ExpiryInterval = time.Hour
	return cfg
}

// LoadConfig reads the YAML file at path (skipped when path is empty), then
// applies environment overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config data: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Database.URL) == "" {
		problems = append(problems, "database.url is required")
	}
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		problems = append(problems, "auth.signing_key is required")
	}
	switch c.Storage.Driver {
	case "local":
		if c.Storage.UploadsDir == "" {
			problems = append(problems, "storage.uploads_dir is required for local storage")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			problems = append(problems, "storage.s3.bucket is required for s3 storage")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Storage.MaxProofSize <= 0 {
		problems = append(problems, "storage.max_proof_size must be positive")
	}
	switch c.Mail.Driver {
	case "log", "ses":
	default:
		problems = append(problems, fmt.Sprintf("unknown mail driver %q", c.Mail.Driver))
	}
	if c.Tasks.Workers <= 0 {
		problems = append(problems, "tasks.workers must be positive")
	}
	if c.Tasks.MaxAttempts <= 0 {
		problems = append(problems, "tasks.max_attempts must be positive")
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}
