package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fathima-sithara/jungbot/internal/api"
	"github.com/fathima-sithara/jungbot/internal/archive"
	"github.com/fathima-sithara/jungbot/internal/cache"
	"github.com/fathima-sithara/jungbot/internal/config"
	"github.com/fathima-sithara/jungbot/internal/kafka"
	"github.com/fathima-sithara/jungbot/internal/metrics"
	"github.com/fathima-sithara/jungbot/internal/middleware"
	"github.com/fathima-sithara/jungbot/internal/repository"
	"github.com/fathima-sithara/jungbot/internal/scheduler"
	"github.com/fathima-sithara/jungbot/internal/service"
	"github.com/fathima-sithara/jungbot/internal/telegram"
	"github.com/fathima-sithara/jungbot/internal/utils"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("c", os.Getenv("CONFIG_PATH"), "path to config.yaml")
	issue := flag.String("issue-token", "", "print an admin token for this subject and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if *issue != "" {
		tok, err := middleware.IssueAdminToken(cfg.JWT.Secret, *issue, 24*time.Hour)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}

	logger, err := utils.NewLogger(cfg.App.Development())
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// mongo
	mc, err := repository.NewMongoClient(ctx, cfg)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	coll := mc.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	repo, err := repository.NewMessageRepository(ctx, coll, cfg.Retention)
	if err != nil {
		logger.Fatal("mongo indexes failed", zap.Error(err))
	}

	// redis
	rdb, err := cache.NewRedis(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	tg := telegram.NewClient(telegram.ClientConfig{
		BaseURL:         cfg.Telegram.APIURL,
		Token:           cfg.Telegram.Token,
		Timeout:         cfg.TelegramTimeout,
		RetryMaxElapsed: cfg.RetryMaxElapsed,
	}, logger)

	deps := service.Deps{
		Store:     repo,
		Settings:  cache.NewSettingsStore(rdb, cfg.Redis.Prefix),
		Cooldown:  cache.NewCooldown(rdb, cfg.Redis.Prefix, cfg.CommandCooldown),
		Publisher: producer,
		Messenger: tg,
	}
	if cfg.Archive.Enabled() {
		store, err := archive.NewS3Store(ctx, cfg.Archive.Region, cfg.Archive.Bucket, cfg.Archive.Endpoint)
		if err != nil {
			logger.Fatal("s3 init failed", zap.Error(err))
		}
		deps.Archiver = archive.NewArchiver(store, cfg.Archive.Prefix)
	}

	bot := service.NewBot(deps, service.Options{
		Window:   cfg.Window,
		TopLimit: cfg.Stats.TopLimit,
	}, logger)

	if _, err := bot.WarmUp(ctx); err != nil {
		logger.Error("cache warm-up incomplete", zap.Error(err))
	}

	// queue worker
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx, bot.Execute); err != nil {
			logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	specs := scheduler.Specs{Maintenance: cfg.Cron.Maintenance, OffFromWork: cfg.Cron.OffFromWork}
	if cfg.Archive.Enabled() {
		specs.Archive = cfg.Cron.Archive
	}
	sched, err := scheduler.New(ctx, specs, bot, logger)
	if err != nil {
		logger.Fatal("scheduler init failed", zap.Error(err))
	}
	sched.Start()

	app := api.NewServer(api.Options{
		WebhookSecret: cfg.Telegram.WebhookSecret,
		JWTSecret:     cfg.JWT.Secret,
		Window:        cfg.Window,
		RateLimit:     middleware.NewIPRateLimiter(ctx, cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, logger).Handler(),
		RequestLog:    cfg.App.Development(),
	}, bot, logger)

	addr := ":" + cfg.App.PortString()
	go func() {
		logger.Info("starting jungbot", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	sched.Stop(shCtx)
	wg.Wait()
	_ = consumer.Close()
	if err := producer.Close(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("producer close", zap.Error(err))
	}
	_ = rdb.Close()
	_ = mc.Disconnect(shCtx)
	logger.Info("jungbot stopped")
}
