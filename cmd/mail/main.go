package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/broker"
	"github.com/carelink-staffing/shift-core/backend/internal/config"
	"github.com/carelink-staffing/shift-core/backend/internal/mailer"
	"github.com/carelink-staffing/shift-core/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

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
		logger.Error("failed to load config", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * mail client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
		mail.WithTimeout(time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		return
	}

	// fail fast on bad credentials
	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("failed to connect to mail server", slog.String("error", err.Error()))
		return
	}
	_ = client.Close()

	from := cfg.Email.From
	if from == "" {
		from = cfg.Email.SMTP.Username
	}
	composer, err := mailer.NewComposer(from)
	if err != nil {
		logger.Error("failed to parse mail templates", slog.String("error", err.Error()))
		return
	}
	worker := mailer.NewWorker(composer, mailer.NewSender(client, cfg.Email.SMTP.MaxRetries))

	/**********************************************
	 * database, for the digest flusher
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", slog.String("error", err.Error()))
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// consume and publish on separate channels so a slow consumer never
	// blocks digest publishing
	consumeCh, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", slog.String("error", err.Error()))
		return
	}
	defer consumeCh.Close()

	publishCh, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", slog.String("error", err.Error()))
		return
	}
	defer publishCh.Close()

	publisher := broker.NewPublisher(publishCh, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	if err := publisher.DeclareQueues(cfg.RabbitMQ.EmailQueue); err != nil {
		logger.Error("failed to declare queue", slog.String("error", err.Error()))
		return
	}

	// one unacked message at a time, the rest stay on the queue for other workers
	if err := consumeCh.Qos(1, 0, false); err != nil {
		logger.Error("failed to set qos", slog.String("error", err.Error()))
		return
	}

	msgs, err := consumeCh.Consume(
		cfg.RabbitMQ.EmailQueue,
		"",    // consumer tag assigned by the broker
		false, // manual ack
		false, // not exclusive
		false, // no-local is not supported by RabbitMQ
		false, // wait for the broker to confirm
		nil,
	)
	if err != nil {
		logger.Error("failed to consume queue", slog.String("error", err.Error()))
		return
	}

	flusher := mailer.NewFlusher(repo, publisher, cfg.RabbitMQ.EmailQueue, cfg.Notification.FlushBatchSize)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, stop := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx, msgs)
	}()
	go func() {
		defer wg.Done()
		flusher.Run(ctx, time.Duration(cfg.Notification.FlushInterval)*time.Second)
	}()

	logger.Info("waiting for messages (CTRL+C to quit)", "queue", cfg.RabbitMQ.EmailQueue)
	<-sigChan

	logger.Info("shutting down mail worker")
	stop()
	wg.Wait()
	logger.Info("mail worker stopped")
}
