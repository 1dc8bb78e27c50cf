package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Session      SessionConfig      `mapstructure:"session"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Upload       UploadConfig       `mapstructure:"upload"`
	Ticket       TicketConfig       `mapstructure:"ticket"`
	Announcement AnnouncementConfig `mapstructure:"announcement"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

type SessionConfig struct {
	Store      string `mapstructure:"store"`
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
	TTLHours   int    `mapstructure:"ttl_hours"`
	RedisHost  string `mapstructure:"redis_host"`
	RedisPort  string `mapstructure:"redis_port"`
}

// TTL returns the absolute session lifetime.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type AuthConfig struct {
	BcryptCost         int `mapstructure:"bcrypt_cost"`
	LoginRatePerMinute int `mapstructure:"login_rate_per_minute"`
	LoginBurst         int `mapstructure:"login_burst"`
}

type UploadConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

type TicketConfig struct {
	NumberPrefix string `mapstructure:"number_prefix"`
}

type AnnouncementConfig struct {
	DefaultExpiryHours int `mapstructure:"default_expiry_hours"`
}

// Load reads configs/config.yaml when present and overlays SSY_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")

	v.SetEnvPrefix("SSY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.request_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "ssy")
	v.SetDefault("database.password", "ssypassword")
	v.SetDefault("database.name", "site_services")
	v.SetDefault("database.path", "data/ssy.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.timeout_seconds", 5)

	v.SetDefault("session.store", "cookie")
	v.SetDefault("session.secret", "default-secret-key-change-me")
	v.SetDefault("session.cookie_name", "ssy_session")
	v.SetDefault("session.ttl_hours", 7*24)
	v.SetDefault("session.redis_host", "localhost")
	v.SetDefault("session.redis_port", "6379")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.login_rate_per_minute", 20)
	v.SetDefault("auth.login_burst", 10)

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_bytes", 5*1024*1024)

	v.SetDefault("ticket.number_prefix", "SSY")

	v.SetDefault("announcement.default_expiry_hours", 48)
}
