package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	API struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
		Token   string        `mapstructure:"token"`
	} `mapstructure:"api"`
	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Auth struct {
		OperatorUser         string `mapstructure:"operator_user"`
		OperatorPasswordHash string `mapstructure:"operator_password_hash"`
	} `mapstructure:"auth"`
	Session struct {
		SecretKey string        `mapstructure:"secret_key"`
		TTL       time.Duration `mapstructure:"ttl"`
	} `mapstructure:"session"`
}

// AuditEnabled reports whether a PostgreSQL audit store is configured.
func (c Config) AuditEnabled() bool {
	return c.Database.Host != ""
}

// RedisEnabled reports whether notifications should be kept in Redis.
func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("auth.operator_user", "operator")
	v.SetDefault("auth.operator_password_hash", "")
	v.SetDefault("session.secret_key", "")
	v.SetDefault("session.ttl", 12*time.Hour)
}

// LoadConfig reads config.yml from path into AppConfig. Environment variables
// override file values (API_BASE_URL overrides api.base_url). A missing file
// is not an error; defaults apply.
func LoadConfig(path string) error {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return err
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	AppConfig = cfg
	return nil
}
