package db

import (
	"time"

	"github.com/smallbiznis/catalog/internal/config"
)

type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
	ConnMaxIdleTime int

	CreateIfNotExists bool
	ConnectRetries    int
	ConnectRetryDelay time.Duration
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Type:              cfg.DBType,
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		Name:              cfg.DBName,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		SSLMode:           cfg.DBSSLMode,
		SQLitePath:        cfg.DBSQLitePath,
		MaxIdleConn:       cfg.DBMaxIdleConn,
		MaxOpenConn:       cfg.DBMaxOpenConn,
		ConnMaxLifetime:   cfg.DBConnMaxLifetime,
		ConnMaxIdleTime:   cfg.DBConnMaxIdleTime,
		CreateIfNotExists: cfg.DBCreateIfNotExists,
		ConnectRetries:    cfg.DBConnectRetries,
		ConnectRetryDelay: cfg.DBConnectRetryDelay,
	}
}
