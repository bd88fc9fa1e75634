package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Sakin08/New-web-sub002/internal/auth"
	"github.com/Sakin08/New-web-sub002/internal/config"
	"github.com/Sakin08/New-web-sub002/internal/dispatch"
	"github.com/Sakin08/New-web-sub002/internal/handler"
	"github.com/Sakin08/New-web-sub002/internal/hub"
	"github.com/Sakin08/New-web-sub002/internal/kafka"
	"github.com/Sakin08/New-web-sub002/internal/logger"
	"github.com/Sakin08/New-web-sub002/internal/metrics"
	"github.com/Sakin08/New-web-sub002/internal/repository"
	"github.com/Sakin08/New-web-sub002/internal/routes"
	"github.com/Sakin08/New-web-sub002/internal/service"
	"github.com/Sakin08/New-web-sub002/internal/ws"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logg, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	metrics.Init()

	mongoClient, err := repository.Connect(cfg.Mongo.URI)
	if err != nil {
		logg.Fatalw("mongo connect", "error", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logg.Warnw("redis unavailable, running single-instance", "error", err)
		rdb = nil
	}

	jv := auth.NewValidator(cfg.JWT.Secret)
	h := hub.New(rdb, cfg.Redis.Prefix, logg)

	repo := repository.NewNotificationRepo(db)
	svc := service.New(repo)
	disp := dispatch.New(repo, h, logg)

	wsSrv := ws.NewServer(h, jv, logg, cfg.PingInterval, cfg.WriteDeadline, cfg.WS.MaxMessageSizeBytes)

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.App.Env != "development"})
	app.Use(fiberlogger.New())
	routes.Register(app, handler.New(svc), wsSrv, jv)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicActions, cfg.Kafka.GroupID, disp, logg)
	go func() {
		if err := consumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
			logg.Errorw("kafka consumer stopped", "error", err)
		}
	}()

	errs := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.App.Port)
		logg.Infow("realtime service listening", "addr", addr)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case e := <-errs:
		logg.Fatalw("server error", "error", e)
	case s := <-sig:
		logg.Infow("signal received", "signal", s.String())
	}

	stopConsumer()
	_ = consumer.Close()
	h.Shutdown()
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logg.Warnw("fiber shutdown", "error", err)
	}
	_ = mongoClient.Disconnect(context.Background())
	if rdb != nil {
		_ = rdb.Close()
	}
	logg.Info("shut down")
}
