// Package config loads the migration settings from flags and environment
// variables (which may be populated by the .env file in main.go).
package config

import (
	"errors"
	"strings"

	"github.com/BartekS5/ufmigrate/internal/etl"
	"github.com/spf13/viper"
)

const (
	KeySQLConnString            = "sql-connection-string"
	KeyMongoConnString          = "mongo-connection-string"
	KeyMongoDatabase            = "mongo-database"
	KeyIgnoreRecords            = "ignore-records"
	KeyIgnoreObsoleteProperties = "ignore-obsolete-properties"
	KeyDryRun                   = "dry-run"
	KeyLogFile                  = "log-file"
	KeyDebug                    = "debug"

	DefaultMongoDatabase = "umbracoforms"
)

// Config holds all configuration for one migration run.
type Config struct {
	SQLConnString   string
	MongoConnString string
	MongoDatabase   string

	IgnoreRecords            bool
	IgnoreObsoleteProperties bool
	DryRun                   bool

	LogFile string
	Debug   bool
}

// NewViper returns a viper instance reading SQL_CONNECTION_STRING style
// environment variables for every key.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyMongoDatabase, DefaultMongoDatabase)
	return v
}

// Load reads the configuration from v. requireDestination is false for
// commands that never touch the destination store.
func Load(v *viper.Viper, requireDestination bool) (*Config, error) {
	cfg := &Config{
		SQLConnString:            v.GetString(KeySQLConnString),
		MongoConnString:          v.GetString(KeyMongoConnString),
		MongoDatabase:            v.GetString(KeyMongoDatabase),
		IgnoreRecords:            v.GetBool(KeyIgnoreRecords),
		IgnoreObsoleteProperties: v.GetBool(KeyIgnoreObsoleteProperties),
		DryRun:                   v.GetBool(KeyDryRun),
		LogFile:                  v.GetString(KeyLogFile),
		Debug:                    v.GetBool(KeyDebug),
	}

	if cfg.SQLConnString == "" {
		return nil, errors.New("SQL_CONNECTION_STRING environment variable or --sql flag not set")
	}
	if requireDestination && !cfg.DryRun && cfg.MongoConnString == "" {
		return nil, errors.New("MONGO_CONNECTION_STRING environment variable or --mongo flag not set")
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = DefaultMongoDatabase
	}
	return cfg, nil
}

// Policy returns the migration policy derived from the two ignore flags.
func (c *Config) Policy() etl.Policy {
	return etl.Policy{
		PopulateObsoleteIDs: !c.IgnoreObsoleteProperties,
		MigrateRecords:      !c.IgnoreRecords,
	}
}
