package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"vidgate/config"
	"vidgate/constant"
	videoHandler "vidgate/handler"
	"vidgate/pkg/rabbitmq"
	"vidgate/repository"
	"vidgate/service"
	"vidgate/storage"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	var events rabbitmq.Publisher = rabbitmq.NopPublisher{}
	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("running without event publishing")
	} else {
		events = rabbitmq.NewPublisher(conn, cfg.Queue)
	}

	repo := repository.NewRepo(cfg.DB)
	if err := repo.Migrate(ctx); err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to migrate videos schema")
	}
	store := storage.NewMinIOClient(cfg.Storage, cfg.MinIOBucket)
	baseURL := fmt.Sprintf("%s://%s", cfg.App.Protocol, cfg.App.Host)
	coordinator := service.NewCoordinator(repo, store, events, baseURL)

	r := newRouter(coordinator, cfg.Weather, []byte(cfg.Auth.JWTSecret))

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func newRouter(coordinator service.Coordinator, weatherCfg config.Weather, jwtSecret []byte) *gin.Engine {
	videos := videoHandler.NewVideoHandler(coordinator)
	weather := videoHandler.NewWeatherHandler(weatherCfg)

	r := gin.Default()
	addHealth(r)
	r.GET("/weather", weather.Get)

	api := r.Group("/")
	api.Use(authMiddleware(jwtSecret))
	{
		api.POST("/videos", videos.Upload)
		api.GET("/videos", videos.List)
		api.GET("/videos/:id", videos.Fetch)
		api.PUT("/videos/:id/publish", videos.Publish)
		api.DELETE("/videos/:id", videos.Delete)
	}

	return r
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
