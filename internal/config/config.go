package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBHost         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPort         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration
	AppPort        string
	AppEnv         string
	LogLevel       string
	JWTSecret      string
	JWTTTL         time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	IdempotencyTTL time.Duration
	CORSOrigins    []string
	InternalKey    string
	MigrationsAuto bool
}

var (
	ErrMissingDBHost    = errors.New("DB_HOST is not set")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("app_port", "3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", "30m")
	v.SetDefault("jwt_ttl", "1h")
	v.SetDefault("redis_db", 0)
	v.SetDefault("idempotency_ttl", "24h")
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("migrations_auto", false)
}

// Load reads configuration from the environment, with a .env file
// loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{"db_host", "db_user", "db_password", "db_name", "jwt_secret", "redis_addr", "redis_password", "internal_secret_key"} {
		_ = v.BindEnv(key)
	}

	cfg := &Config{
		DBHost:         v.GetString("db_host"),
		DBUser:         v.GetString("db_user"),
		DBPassword:     v.GetString("db_password"),
		DBName:         v.GetString("db_name"),
		DBPort:         v.GetString("db_port"),
		DBSSLMode:      v.GetString("db_sslmode"),
		DBMaxOpenConns: v.GetInt("db_max_open_conns"),
		DBMaxIdleConns: v.GetInt("db_max_idle_conns"),
		DBConnLifetime: v.GetDuration("db_conn_max_lifetime"),
		AppPort:        v.GetString("app_port"),
		AppEnv:         v.GetString("app_env"),
		LogLevel:       v.GetString("log_level"),
		JWTSecret:      v.GetString("jwt_secret"),
		JWTTTL:         v.GetDuration("jwt_ttl"),
		RedisAddr:      v.GetString("redis_addr"),
		RedisPassword:  v.GetString("redis_password"),
		RedisDB:        v.GetInt("redis_db"),
		IdempotencyTTL: v.GetDuration("idempotency_ttl"),
		CORSOrigins:    splitList(v.GetString("cors_allow_origins")),
		InternalKey:    v.GetString("internal_secret_key"),
		MigrationsAuto: v.GetBool("migrations_auto"),
	}

	if cfg.DBHost == "" {
		return nil, ErrMissingDBHost
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

// LoadConfig is Load for entrypoints: a broken environment is fatal.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}
	return cfg
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
