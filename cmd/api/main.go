package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/assignment"
	"github.com/carelink-staffing/shift-core/backend/internal/availability"
	"github.com/carelink-staffing/shift-core/backend/internal/broker"
	"github.com/carelink-staffing/shift-core/backend/internal/closure"
	"github.com/carelink-staffing/shift-core/backend/internal/config"
	"github.com/carelink-staffing/shift-core/backend/internal/handler"
	"github.com/carelink-staffing/shift-core/backend/internal/notify"
	"github.com/carelink-staffing/shift-core/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid time zone", "time_zone", cfg.TimeZone, "error", err)
		return
	}

	/**********************************************
	 * database
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not connect, ping to fail fast
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		return
	}
	defer ch.Close()

	publisher := broker.NewPublisher(ch, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	if err := publisher.DeclareQueues(cfg.RabbitMQ.EmailQueue, cfg.RabbitMQ.SMSQueue, cfg.RabbitMQ.WhatsAppQueue); err != nil {
		logger.Error("failed to declare queues", "error", err)
		return
	}

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		return
	}

	/**********************************************
	 * services
	 **********************************************/
	dispatcher := notify.NewDispatcher(
		notify.NewEmailSender(publisher, cfg.RabbitMQ.EmailQueue),
		notify.NewTextSender(publisher, cfg.RabbitMQ.SMSQueue),
		notify.NewTextSender(publisher, cfg.RabbitMQ.WhatsAppQueue),
		repo,
		time.Duration(cfg.Notification.BatchWindow)*time.Second,
	)

	broadcaster := notify.NewBroadcaster(
		repo,
		dispatcher,
		rdb,
		time.Duration(cfg.Notification.BroadcastLockTTL)*time.Second,
		cfg.Notification.BroadcastConcurrency,
	)

	validator := availability.NewValidator(cfg.Availability.MaxHours, cfg.Availability.WindowHours)
	assigner := assignment.NewService(repo, validator, repo, dispatcher, time.Duration(cfg.Notification.WaitMillis)*time.Millisecond)
	completer := closure.NewService(repo, repo, cfg.Closure.AdjustmentThreshold)

	/**********************************************
	 * lifecycle automation
	 **********************************************/
	automationCtx, stopAutomation := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	if cfg.Automation.Enabled {
		automator := closure.NewAutomator(repo, loc)
		wg.Add(1)
		go func() {
			defer wg.Done()
			automator.Run(automationCtx, time.Duration(cfg.Automation.Interval)*time.Second)
		}()
	}

	/**********************************************
	 * handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, assigner, completer, broadcaster)
	if err != nil {
		logger.Error("failed to create handler", "error", err)
		stopAutomation()
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down server")

	stopAutomation()

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}
	wg.Wait()
	logger.Info("server stopped")
}
