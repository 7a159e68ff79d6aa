package main

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gstledger/internal/config"
	"gstledger/internal/lock"
	"gstledger/internal/logging"
	"gstledger/internal/port"
	"gstledger/internal/repository/postgres"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate the GST ledger service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newProcessCmd(),
		newPartiesCmd(),
		newClassifyCmd(),
	)
	return root
}

// env is what database-backed commands share.
type env struct {
	cfg    *config.Config
	db     *sqlx.DB
	rdb    *redis.Client
	logger *logrus.Logger
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: logging.New(cfg.Log)}, nil
}

// locker returns the same kind of document lock the server uses, so a command
// run next to a live server waits for its holders.
func (e *env) locker() port.DocumentLocker {
	if !e.cfg.Redis.Enabled {
		return lock.NewKeyedQueue()
	}
	e.rdb = redis.NewClient(&redis.Options{
		Addr:     e.cfg.Redis.Addr,
		Password: e.cfg.Redis.Password,
		DB:       e.cfg.Redis.DB,
	})
	return lock.NewRedisLocker(e.rdb, lock.RedisConfig{
		TTL:   e.cfg.Redis.LockTTL,
		Wait:  e.cfg.Redis.LockWait,
		Retry: e.cfg.Redis.LockRetry,
	}, e.logger)
}

func (e *env) Close() {
	if e.rdb != nil {
		_ = e.rdb.Close()
	}
	_ = e.db.Close()
}
