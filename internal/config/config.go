package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logger   LoggerConfig   `yaml:"logger"`
	S3       S3Config       `yaml:"s3"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN returns URL when set, otherwise a postgres DSN built from the parts.
// For the sqlite driver Name is the database file.
func (d DatabaseConfig) GetDSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.Name
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	// URL in redis:// form takes precedence over Host/Port
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Channel prefix for board change events
	EventChannel string `yaml:"event_channel"`
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}

type ArchiveConfig struct {
	Enabled bool `yaml:"enabled"`
	// Cron spec, robfig/cron standard five-field format
	Schedule  string        `yaml:"schedule"`
	Retention time.Duration `yaml:"retention"`
	BatchSize int           `yaml:"batch_size"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            "8000",
			Mode:            "debug",
			BasePath:        "/api/boards-service",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "collab_board",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Port:         6379,
			EventChannel: "board-events",
		},
		Logger: LoggerConfig{Level: "info"},
		S3: S3Config{
			Prefix: "board-archive",
		},
		Archive: ArchiveConfig{
			Enabled:   true,
			Schedule:  "0 3 * * *",
			Retention: 30 * 24 * time.Hour,
			BatchSize: 100,
		},
	}

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if p, err := strconv.Atoi(redisPort); err == nil {
			cfg.Redis.Port = p
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.S3.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		cfg.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		cfg.S3.SecretKey = secretKey
	}
	if schedule := os.Getenv("ARCHIVE_SCHEDULE"); schedule != "" {
		cfg.Archive.Schedule = schedule
	}
	if retention := os.Getenv("ARCHIVE_RETENTION"); retention != "" {
		if d, err := time.ParseDuration(retention); err == nil {
			cfg.Archive.Retention = d
		}
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET)")
	}

	return cfg, nil
}
