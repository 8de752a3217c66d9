package fx

import (
	"scotia-sense/internal/config"
	"scotia-sense/internal/database"
	"scotia-sense/internal/logger"
	"scotia-sense/internal/metrics"
	"scotia-sense/internal/notify"
	"scotia-sense/internal/repository"
	"scotia-sense/internal/server"
	"scotia-sense/internal/service"
	"scotia-sense/internal/storage"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideEmailSender(cfg *config.Config, log zerolog.Logger) *notify.EmailSender {
	return notify.NewEmailSender(cfg.ResendAPIKey, cfg.InviteFromEmail, log)
}

func ProvideSMSSender(cfg *config.Config, log zerolog.Logger) *notify.SMSSender {
	return notify.NewSMSSender(cfg.TwilioSID, cfg.TwilioAuthToken, cfg.TwilioFrom, log)
}

func ProvideNotifier(d *notify.Dispatcher) notify.Notifier {
	return d
}

func ProvideFileStore(cfg *config.Config, log zerolog.Logger) (storage.FileStore, error) {
	return storage.NewLocalStore(cfg.UploadDir, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewTeamRepository),
	fx.Provide(repository.NewInviteRepository),
	fx.Provide(repository.NewBaselineRepository),
	fx.Provide(repository.NewTestScoreRepository),
	fx.Provide(repository.NewInjuryRepository),
	fx.Provide(repository.NewRecoveryRepository),
	fx.Provide(repository.NewNoteRepository),
	// outbound providers
	fx.Provide(ProvideEmailSender),
	fx.Provide(ProvideSMSSender),
	fx.Provide(notify.NewDispatcher),
	fx.Provide(ProvideNotifier),
	fx.Provide(ProvideFileStore),
	// svc
	fx.Provide(service.NewBaselineService),
	fx.Provide(service.NewScoreService),
	fx.Provide(service.NewRecoveryService),
	fx.Provide(service.NewInviteService),
	fx.Provide(service.NewTeamService),
	fx.Provide(service.NewUserService),
	// server
	fx.Provide(server.New),
)
