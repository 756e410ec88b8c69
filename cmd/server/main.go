package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/containercalc/containercalc/modules/account"
	"github.com/containercalc/containercalc/modules/products"
	"github.com/containercalc/containercalc/modules/quotes"
	"github.com/containercalc/containercalc/pkg/auth"
	"github.com/containercalc/containercalc/pkg/authstate"
	"github.com/containercalc/containercalc/pkg/config"
	"github.com/containercalc/containercalc/pkg/email"
	"github.com/containercalc/containercalc/pkg/file"
	"github.com/containercalc/containercalc/pkg/httpserver"
	"github.com/containercalc/containercalc/pkg/logger"
	"github.com/containercalc/containercalc/pkg/pg"
	"github.com/containercalc/containercalc/pkg/redis"
	"github.com/containercalc/containercalc/pkg/session"
)

type appConfig struct {
	Logger  logger.Config
	DB      pg.Config
	Redis   redis.Config
	HTTP    httpserver.Config
	Session session.Config
	Account account.Config
	Quotes  quotes.Config
	Email   email.Config
	S3      file.S3Config

	// TokenSecret signs password-reset tokens.
	TokenSecret string `env:"AUTH_TOKEN_SECRET,required"`
	// UploadsDir is the local fallback when no S3 bucket is configured.
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	// UploadsBaseURL serves locally stored uploads.
	UploadsBaseURL string `env:"UPLOADS_BASE_URL" envDefault:"http://localhost:8080/uploads"`
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	db, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pg.Migrate(ctx, db, cfg.DB, log); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	sessions := session.NewManager(
		session.WithStore(session.NewRedisStore(redisClient)),
		session.WithConfig(cfg.Session),
	)

	mailer := newMailer(cfg, log)
	images, err := newImageStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(account.NewRepository(db), cfg.TokenSecret,
		auth.WithLogger(log),
	)
	notifier := auth.NewNotifier(16)
	accountSvc := account.NewService(authSvc, sessions, cfg.Account,
		account.WithLogger(log),
		account.WithNotifier(notifier),
		account.WithMailer(mailer),
	)

	stateMgr := authstate.NewManager(account.NewClient(accountSvc, ""),
		authstate.WithChanges(notifier),
		authstate.WithLogger(log),
	)
	if err := stateMgr.Start(ctx); err != nil {
		return err
	}
	defer stateMgr.Stop()

	productRepo := products.NewPgRepository(db)
	quoteRepo := quotes.NewPgRepository(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(account.Middleware(accountSvc))
	r.Use(authstate.Middleware(stateMgr))

	r.Mount("/auth", account.Router(accountSvc, log))
	r.Mount("/products", products.Router(productRepo, images, account.RequireAuth, log))
	r.Mount("/quotes", quotes.Router(quoteRepo, productRepo, cfg.Quotes, log))
	r.Mount("/api", quotes.TrackingRouter(quoteRepo, log))
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(db),
		redis.Healthcheck(redisClient),
	))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func newMailer(cfg appConfig, log *slog.Logger) email.EmailSender {
	if cfg.Email.PostmarkServerToken == "" {
		log.Info("no postmark token configured, using dev mail sender")
		return email.NewDevSender(log)
	}
	sender, err := email.NewPostmarkClient(cfg.Email)
	if err != nil {
		log.Warn("postmark client unavailable, falling back to dev sender", logger.Error(err))
		return email.NewDevSender(log)
	}
	return sender
}

func newImageStorage(ctx context.Context, cfg appConfig, log *slog.Logger) (file.Storage, error) {
	if cfg.S3.Bucket != "" {
		return file.NewS3Storage(ctx, cfg.S3)
	}
	log.Info("no S3 bucket configured, storing uploads locally",
		slog.String("dir", cfg.UploadsDir))
	return file.NewLocalStorage(cfg.UploadsDir, cfg.UploadsBaseURL)
}
