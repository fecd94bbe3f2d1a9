package router

import (
	"github.com/quicktalk/quicktalk/internal/application"
	"github.com/quicktalk/quicktalk/internal/container"
	pginfra "github.com/quicktalk/quicktalk/internal/infrastructure/postgres"
	handlers "github.com/quicktalk/quicktalk/internal/interface/http"
	"github.com/quicktalk/quicktalk/internal/router/modules"
	"github.com/quicktalk/quicktalk/pkg/mailer"
)

func buildNotifier() application.Notifier {
	cfg := container.GetConfig()
	if cfg.MailSendEnabled && container.GetRabbitPub() != nil {
		return mailer.NewQueueNotifier(container.GetRabbitPub(), cfg.AppName, cfg.OTPTTL)
	}
	return &mailer.LogNotifier{Logger: container.GetLogger()}
}

// InitModules initializes all application modules and registers them
// with the router registry. Called once during application startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	users := pginfra.NewUserRepository(container.GetPGPool())
	messages := pginfra.NewMessageRepository(container.GetPGPool())

	authSvc := application.NewAuthService(
		users,
		container.GetOTPStore(),
		buildNotifier(),
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
	)
	chatSvc := application.NewChatService(messages, container.GetHub(), container.GetLogger())

	authHandler := handlers.NewAuthHandler(authSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(authSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	chatHandler := handlers.NewChatHandler(chatSvc, container.GetHub(), container.GetLogger())
	cryptoHandler := handlers.NewCryptoHandler(container.GetLogger())
	mediaHandler := handlers.NewMediaHandler(container.GetGCS(), cfg.GCSBucket, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler))
	r.Add(modules.NewChatModule(chatHandler))
	r.Add(modules.NewCryptoModule(cryptoHandler))
	r.Add(modules.NewMediaModule(mediaHandler))
}
