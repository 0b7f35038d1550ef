// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	templatestore "github.com/dalemusser/gatherly/internal/app/store/templates"
	"github.com/dalemusser/gatherly/internal/app/system/timeouts"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It applies handler timeouts, logs the configured backends, and checks that
// the default template is in the catalog, since new drafts fall back to it.
// A missing default is logged, not fatal: an operator may have seeding off
// and manage the catalog by hand.
//
// The context will be cancelled if the process is asked to shut down while
// Startup is running; honor it in any long-running work.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})

	logger.Info("gatherly backends",
		zap.String("invitation_backend", appCfg.InvitationBackend),
		zap.Bool("published_cache", deps.Redis != nil),
		zap.String("storage_type", appCfg.StorageType),
		zap.Bool("bearer_auth", appCfg.JWTSecret != ""),
	)

	_, err := templatestore.New(deps.MongoDatabase).GetActive(ctx, models.DefaultTemplateID)
	switch {
	case err == nil:
	case errors.Is(err, storeutil.ErrNotFound):
		logger.Warn("default template is not in the active catalog",
			zap.String("template_id", models.DefaultTemplateID))
	default:
		logger.Error("template catalog check failed", zap.Error(err))
		return err
	}

	return nil
}
