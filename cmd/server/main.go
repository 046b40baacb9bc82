package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/worklane/boardsync/api/handler"
	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/internal/config"
	"github.com/worklane/boardsync/internal/infrastructure/monitor"
	redisInfra "github.com/worklane/boardsync/internal/infrastructure/redis"
	"github.com/worklane/boardsync/internal/middleware"
	"github.com/worklane/boardsync/internal/router"
	"github.com/worklane/boardsync/internal/services"
	"github.com/worklane/boardsync/internal/services/lifecycle"
	"github.com/worklane/boardsync/pkg/httpcontext"
	"github.com/worklane/boardsync/pkg/logger"
	"github.com/worklane/boardsync/repository/remote"
	redisRepo "github.com/worklane/boardsync/repository/redis"
	authUC "github.com/worklane/boardsync/usecase/auth"
	boardUC "github.com/worklane/boardsync/usecase/board"
	directoryUC "github.com/worklane/boardsync/usecase/directory"
	"github.com/worklane/boardsync/usecase/member"
	"github.com/worklane/boardsync/usecase/taskform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	store := remote.NewClient(cfg.Store.BaseURL, cfg.Store.RequestTimeout, zapLogger)

	mon := monitor.New(store, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)

	loader := boardUC.NewLoader(store, zapLogger)
	holder := boardUC.NewHolder(loader, zapLogger)

	// Reload is the only writer of view state: every successful mutation
	// funnels through this hook.
	reload := func(ctx context.Context, sess *domain.Session, workspaceID int64) {
		if _, err := holder.Reload(ctx, sess, workspaceID); err != nil {
			zapLogger.Warn("post-mutation reload failed",
				zap.Int64("workspace", workspaceID),
				zap.Error(err))
		}
	}

	forms := taskform.NewRegistry(store, store, reload, zapLogger)
	invites := member.NewRegistry(store, reload, cfg.Board.SearchDebounce, zapLogger)
	directory := directoryUC.New(store, zapLogger)
	authUseCase := authUC.New(sessionRepo, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, zapLogger)

	janitor := services.NewSessionJanitor(10*time.Minute, zapLogger, forms, invites)
	janitor.Start()
	manager.Register("session_janitor", func(ctx context.Context) error {
		janitor.Stop()
		return nil
	})

	if cfg.Board.RefreshEnabled {
		refresher := services.NewBoardRefresher(holder, mon, zapLogger, services.RefresherConfig{
			Interval: cfg.Board.RefreshInterval,
		})
		refresher.Start()
		manager.Register("board_refresher", func(ctx context.Context) error {
			refresher.Stop(ctx)
			return nil
		})
	}

	teardown := func(sessionID string) {
		forms.CloseSession(sessionID)
		invites.CloseSession(sessionID)
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Session:   apiHandler.NewSessionHandler(authUseCase, teardown, ctxAdapter, zapLogger),
		Board:     apiHandler.NewBoardHandler(holder, ctxAdapter, zapLogger),
		Form:      apiHandler.NewFormHandler(forms, holder, ctxAdapter, zapLogger),
		Invite:    apiHandler.NewInviteHandler(invites, ctxAdapter, zapLogger),
		Directory: apiHandler.NewDirectoryHandler(directory, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.SessionAuth(authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
