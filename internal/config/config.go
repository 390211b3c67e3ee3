package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DefaultSecretKey     = "your-secret-key-change-in-production"
	DefaultAdminPassword = "admin123"
	DefaultWebhookURL    = "http://localhost:5678/webhook/resume-upload"

	CredentialsStatic   = "static"
	CredentialsPostgres = "postgres"

	StorageDrive = "drive"
	StorageS3    = "s3"
	StorageMinio = "minio"
	StorageLocal = "local"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer  `yaml:"http_server"`
	Auth        `yaml:"auth"`
	Credentials `yaml:"credentials"`
	Storage     `yaml:"storage"`
	Webhook     `yaml:"webhook"`
	Upload      `yaml:"upload"`
	Cache       `yaml:"cache"`
	DB          `yaml:"db"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"0.0.0.0:8000"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"60s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"120s"`
}

type Auth struct {
	SecretKey string        `yaml:"secret_key" env:"SECRET_KEY" env-default:"your-secret-key-change-in-production"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m"`
}

type Credentials struct {
	Backend       string `yaml:"backend" env:"CREDENTIALS_BACKEND" env-default:"static"`
	AdminUsername string `yaml:"admin_username" env:"ADMIN_USERNAME" env-default:"admin"`
	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL" env-default:"admin@example.com"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD" env-default:"admin123"`
}

type Storage struct {
	Backend string        `yaml:"backend" env:"STORAGE_BACKEND" env-default:"drive"`
	Timeout time.Duration `yaml:"timeout" env:"STORAGE_TIMEOUT" env-default:"0s"`
	Drive   `yaml:"drive"`
	Object  `yaml:"object"`
	Local   `yaml:"local"`
}

type Drive struct {
	CredentialsFile   string `yaml:"credentials_file" env:"GOOGLE_CREDENTIALS_FILE" env-default:"credentials.json"`
	ServiceAccountKey string `yaml:"service_account_key" env:"GOOGLE_SERVICE_ACCOUNT_KEY"`
	FolderID          string `yaml:"folder_id" env:"GOOGLE_DRIVE_FOLDER_ID"`
}

// Object configures the S3-compatible backends (s3 and minio).
type Object struct {
	Endpoint  string        `yaml:"endpoint" env:"OBJECT_ENDPOINT"`
	Region    string        `yaml:"region" env:"OBJECT_REGION" env-default:"us-east-1"`
	Bucket    string        `yaml:"bucket" env:"OBJECT_BUCKET" env-default:"resumes"`
	AccessKey string        `yaml:"access_key" env:"OBJECT_ACCESS_KEY"`
	SecretKey string        `yaml:"secret_key" env:"OBJECT_SECRET_KEY"`
	LinkTTL   time.Duration `yaml:"link_ttl" env:"OBJECT_LINK_TTL" env-default:"15m"`
}

type Local struct {
	Path    string `yaml:"path" env:"LOCAL_STORAGE_PATH" env-default:"uploads"`
	BaseURL string `yaml:"base_url" env:"LOCAL_BASE_URL"`
}

type Webhook struct {
	URL     string        `yaml:"url" env:"WEBHOOK_URL" env-default:"http://localhost:5678/webhook/resume-upload"`
	Timeout time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"30s"`
	Secret  string        `yaml:"secret" env:"WEBHOOK_SECRET"`
}

type Upload struct {
	AllowedExtensions []string `yaml:"allowed_extensions" env:"ALLOWED_EXTENSIONS" env-separator:"," env-default:".pdf"`
	MaxSize           int64    `yaml:"max_size" env:"MAX_UPLOAD_SIZE" env-default:"10485760"`
}

type Cache struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DedupTTL time.Duration `yaml:"dedup_ttl" env:"DEDUP_TTL" env-default:"24h"`
}

type DB struct {
	Addr     string `yaml:"addr" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DB       string `yaml:"db" env:"POSTGRES_DB" env-default:"resumes"`
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

// Load reads an optional .env file, then CONFIG_PATH (if set) and the
// environment. Environment variables win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, err
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.AllowedExtensions = NormalizeExtensions(cfg.AllowedExtensions)

	return &cfg, nil
}

// Validate rejects configurations the service must not start with and
// returns warnings for development defaults that are tolerated outside prod.
func (c *Config) Validate() (warnings []string, err error) {
	if c.SecretKey == "" {
		return nil, errors.New("SECRET_KEY must be set")
	}
	if c.TokenTTL <= 0 {
		return nil, errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if len(c.AllowedExtensions) == 0 {
		return nil, errors.New("ALLOWED_EXTENSIONS must not be empty")
	}
	if c.MaxSize < 0 {
		return nil, errors.New("MAX_UPLOAD_SIZE must not be negative")
	}
	if c.Webhook.Timeout <= 0 {
		return nil, errors.New("WEBHOOK_TIMEOUT must be positive")
	}

	switch c.Credentials.Backend {
	case CredentialsStatic:
		if c.AdminUsername == "" || c.AdminPassword == "" {
			return nil, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
		}
	case CredentialsPostgres:
	default:
		return nil, fmt.Errorf("unknown CREDENTIALS_BACKEND %q", c.Credentials.Backend)
	}

	switch c.Storage.Backend {
	case StorageDrive, StorageLocal:
	case StorageS3, StorageMinio:
		if c.Bucket == "" {
			return nil, errors.New("OBJECT_BUCKET must be set")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	insecure := make([]string, 0)

	if c.SecretKey == DefaultSecretKey {
		insecure = append(insecure, "using default SECRET_KEY, change this in production")
	}
	if c.Credentials.Backend == CredentialsStatic && c.AdminPassword == DefaultAdminPassword {
		insecure = append(insecure, "using default ADMIN_PASSWORD, change this in production")
	}
	if c.Webhook.URL == DefaultWebhookURL {
		insecure = append(insecure, "using default WEBHOOK_URL, uploads will notify a local endpoint")
	}

	if c.Env == EnvProd && len(insecure) > 0 {
		return nil, fmt.Errorf("insecure configuration in %s: %s", EnvProd, strings.Join(insecure, "; "))
	}

	return insecure, nil
}

// NormalizeExtensions lower-cases extensions and adds the leading dot.
func NormalizeExtensions(exts []string) []string {
	res := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))

	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		res = append(res, ext)
	}

	return res
}
