package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewRuntimeHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string

	OTLPEndpoint string

	DBType              string
	DBHost              string
	DBPort              string
	DBName              string
	DBUser              string
	DBPassword          string
	DBSSLMode           string
	DBSQLitePath        string
	DBMaxIdleConn       int
	DBMaxOpenConn       int
	DBConnMaxLifetime   int
	DBConnMaxIdleTime   int
	DBCreateIfNotExists bool
	DBConnectRetries    int
	DBConnectRetryDelay time.Duration

	SeedSampleProducts bool

	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	WriteRate  float64
	WriteBurst int

	SKULockTTL time.Duration
}

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Load loads configuration from environment variables, an optional .env file
// and an optional catalog.yaml.
func Load() Config {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("catalog")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/catalog")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	// a missing file is fine, env and defaults still apply
	_ = v.ReadInConfig()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "catalog")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("PORT", "3000")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4317")

	v.SetDefault("DATABASE_TYPE", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USERNAME", "postgres")
	v.SetDefault("DB_PASSWORD", "root")
	v.SetDefault("DB_NAME", "products_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "catalog.db")
	v.SetDefault("DB_MAX_IDLE_CONN", 10)
	v.SetDefault("DB_MAX_OPEN_CONN", 50)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("DB_CREATE_IF_NOT_EXISTS", true)
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_CONNECT_RETRY_DELAY", "3s")
	v.SetDefault("SEED_SAMPLE_PRODUCTS", false)

	v.SetDefault("CORS_ORIGINS", "http://localhost:3001,http://127.0.0.1:3001")
	v.SetDefault("CORS_METHODS", "GET,HEAD,PUT,PATCH,POST,DELETE")
	v.SetDefault("CORS_HEADERS", "Content-Type,Authorization")
	v.SetDefault("CORS_CREDENTIALS", true)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_WRITE_RATE", 20.0)
	v.SetDefault("RATE_LIMIT_WRITE_BURST", 40)
	v.SetDefault("SKU_LOCK_TTL", "5s")
}

// FromViper maps a populated viper instance onto Config.
func FromViper(v *viper.Viper) Config {
	environment := strings.ToLower(strings.TrimSpace(v.GetString("ENVIRONMENT")))
	if environment == "" {
		environment = EnvDevelopment
	}

	return Config{
		AppName:      strings.TrimSpace(v.GetString("APP_NAME")),
		AppVersion:   strings.TrimSpace(v.GetString("APP_VERSION")),
		Environment:  environment,
		Port:         strings.TrimSpace(v.GetString("PORT")),
		OTLPEndpoint: strings.TrimSpace(v.GetString("OTLP_ENDPOINT")),

		DBType:              strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_TYPE"))),
		DBHost:              v.GetString("DB_HOST"),
		DBPort:              v.GetString("DB_PORT"),
		DBName:              v.GetString("DB_NAME"),
		DBUser:              v.GetString("DB_USERNAME"),
		DBPassword:          v.GetString("DB_PASSWORD"),
		DBSSLMode:           v.GetString("DB_SSLMODE"),
		DBSQLitePath:        v.GetString("DB_SQLITE_PATH"),
		DBMaxIdleConn:       v.GetInt("DB_MAX_IDLE_CONN"),
		DBMaxOpenConn:       v.GetInt("DB_MAX_OPEN_CONN"),
		DBConnMaxLifetime:   v.GetInt("DB_CONN_MAX_LIFETIME"),
		DBConnMaxIdleTime:   v.GetInt("DB_CONN_MAX_IDLE_TIME"),
		DBCreateIfNotExists: v.GetBool("DB_CREATE_IF_NOT_EXISTS"),
		DBConnectRetries:    v.GetInt("DB_CONNECT_RETRIES"),
		DBConnectRetryDelay: v.GetDuration("DB_CONNECT_RETRY_DELAY"),

		SeedSampleProducts: v.GetBool("SEED_SAMPLE_PRODUCTS"),

		CORS: CORSConfig{
			AllowOrigins:     splitList(v.GetString("CORS_ORIGINS")),
			AllowMethods:     splitList(v.GetString("CORS_METHODS")),
			AllowHeaders:     splitList(v.GetString("CORS_HEADERS")),
			AllowCredentials: v.GetBool("CORS_CREDENTIALS"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			RedisPassword: strings.TrimSpace(v.GetString("REDIS_PASSWORD")),
			RedisDB:       v.GetInt("REDIS_DB"),
			WriteRate:     v.GetFloat64("RATE_LIMIT_WRITE_RATE"),
			WriteBurst:    v.GetInt("RATE_LIMIT_WRITE_BURST"),
			SKULockTTL:    v.GetDuration("SKU_LOCK_TTL"),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ListenAddr returns the HTTP listen address derived from Port.
func (c Config) ListenAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "3000"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
