package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"HealthMate/internal/cli/api"
	"HealthMate/internal/cli/repo"
	fsrepo "HealthMate/internal/cli/repo/fs"
	reposqlite "HealthMate/internal/cli/repo/sqlite"
	"HealthMate/internal/cli/route"
	"HealthMate/internal/cli/service"
	"HealthMate/internal/cli/session"
	"HealthMate/internal/cli/upload"
	"HealthMate/internal/config"
	"HealthMate/internal/logger"
	"HealthMate/internal/middleware"
)

// App — собранный клиент: сессия, маршруты, сервисы.
type App struct {
	Log      *zap.SugaredLogger
	Gate     *session.Gate
	Guard    *route.Guard
	Auth     service.AuthService
	Reports  *service.ReportService
	Pipeline *upload.Pipeline
}

// NewApp собирает зависимости клиента и выполняет bootstrap сессии.
// cleanup необходимо вызвать после окончания работы, чтобы закрыть соединение с БД.
func NewApp(ctx context.Context, cfg *config.Config) (*App, func() error, error) {
	if cfg == nil {
		return nil, nil, errors.New("nil config")
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	log := zl.Sugar()
	middleware.SetLogger(log)

	local, err := reposqlite.Open(cfg.ClientDBPath)
	if err != nil {
		_ = zl.Sync()
		return nil, nil, fmt.Errorf("open client db: %w", err)
	}
	cleanup := func() error {
		_ = zl.Sync()
		return local.Close()
	}

	// cookie первым, localStorage — запасной источник токена для запросов.
	// Сессия восстанавливается только по cookie.
	cookie := fsrepo.NewCookieStore(cfg.TokenFile)
	creds := repo.Chain{cookie, local}
	sessionCreds := repo.Mirrored{Primary: cookie, Mirrors: repo.Chain{local}}

	backendHTTP := &http.Client{Transport: middleware.Chain(nil,
		middleware.WithRequestID,
		middleware.WithAuth(creds),
		middleware.WithLogging,
	)}
	storeHTTP := &http.Client{Transport: middleware.Chain(nil, middleware.WithLogging)}

	backend := api.NewClient(cfg.BackendURL, backendHTTP, cfg.RequestTimeout)
	store := api.NewStoreClient(cfg.StoreURL, storeHTTP, cfg.UploadTimeout)

	gate := session.NewGate(sessionCreds, backend, log, cfg.TokenTTL)
	gate.Bootstrap(ctx)

	guard := route.NewGuard(gate, route.DefaultTable(), func(p string, d route.Decision) {
		log.Debugw("route decision", "path", p, "action", d.Action.String(), "location", d.Location)
	})
	pipeline := upload.NewPipeline(backend, store, log, cfg.PagesFolder)

	app := &App{
		Log:      log,
		Gate:     gate,
		Guard:    guard,
		Auth:     service.NewAuthService(backend, gate, log),
		Reports:  service.NewReportService(backend, pipeline, local, log),
		Pipeline: pipeline,
	}
	return app, func() error {
		guard.Close()
		return cleanup()
	}, nil
}
