package cli

import (
	"context"

	"github.com/BartekS5/ufmigrate/internal/config"
	"github.com/BartekS5/ufmigrate/internal/etl"
	"github.com/BartekS5/ufmigrate/pkg/database"
	"github.com/BartekS5/ufmigrate/pkg/logger"
)

func initLogging(cfg *config.Config) error {
	level := logger.INFO
	if cfg.Debug {
		level = logger.DEBUG
	}
	return logger.InitLogger(cfg.LogFile, level)
}

func runMigration(ctx context.Context, cfg *config.Config) error {
	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logger.Close()

	sqlDB, err := database.ConnectSQL(ctx, cfg.SQLConnString)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	legacy := &etl.SQLLegacyStore{DB: sqlDB}

	var dest etl.Destination
	if cfg.DryRun {
		dest = etl.NewMemoryDestination()
	} else {
		mongoClient, err := database.ConnectMongo(ctx, cfg.MongoConnString)
		if err != nil {
			return err
		}
		defer database.DisconnectMongo(mongoClient)
		dest = etl.NewMongoDestination(mongoClient, cfg.MongoDatabase)
	}

	migrator := etl.NewMigrator(legacy, legacy, dest, cfg.Policy(), cfg.DryRun)
	err = migrator.Run(ctx)
	migrator.Stats.Log()
	if err != nil {
		logger.Errorf("Migration aborted: %v", err)
		return err
	}
	return nil
}

func runRepair(ctx context.Context, cfg *config.Config) error {
	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logger.Close()

	sqlDB, err := database.ConnectSQL(ctx, cfg.SQLConnString)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	legacy := &etl.SQLLegacyStore{DB: sqlDB}

	if err := etl.FixDataTypes(ctx, legacy, cfg.DryRun); err != nil {
		return err
	}
	if !cfg.IgnoreRecords {
		if _, err := etl.FixDataStringLength(ctx, legacy, cfg.DryRun); err != nil {
			return err
		}
	}
	logger.Info("Repair finished successfully.")
	return nil
}
