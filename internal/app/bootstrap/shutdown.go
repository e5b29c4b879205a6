// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background workers, closes the engine, and tears down the
// MongoDB connection. Order matters: the jobs and the engine touch the
// stores, so they stop before the client disconnects.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if running.jobs != nil {
		logger.Info("stopping background jobs")
		running.jobs.Stop()
	}
	if running.engine != nil {
		logger.Info("closing engine")
		running.engine.Close()
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
