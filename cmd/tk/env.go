package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/config"
	"github.com/zulandar/tickora/internal/db"
	"github.com/zulandar/tickora/internal/logging"
	"github.com/zulandar/tickora/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is everything a command needs: config, logger, database and the
// store loaded from it.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	store  *store.Store
}

// configFlag registers the shared --config/-c flag.
func configFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "config", "c", config.DefaultPath, "path to Tickora config file")
}

// connectFromConfig loads config and connects to the configured database,
// migrating the schema.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Storage.Driver, err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		closeDB(gormDB)
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// openEnv connects and loads the store through a write-through persister.
func openEnv(configPath string) (*env, error) {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return nil, err
	}
	return newEnv(cfg, gormDB)
}

// newEnv builds an env over an open database, closing it on failure.
func newEnv(cfg *config.Config, gormDB *gorm.DB) (*env, error) {
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		closeDB(gormDB)
		return nil, err
	}
	s, err := store.Open(store.Options{Persister: db.NewPersister(gormDB)})
	if err != nil {
		logger.Sync()
		closeDB(gormDB)
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: gormDB, store: s}, nil
}

// withEnv runs fn against an opened env and closes it afterwards.
func withEnv(configPath string, fn func(e *env) error) error {
	e, err := openEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}

func (e *env) close() {
	e.logger.Sync()
	closeDB(e.db)
}

func closeDB(gormDB *gorm.DB) {
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
}
