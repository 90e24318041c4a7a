package config

import (
	"errors"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	TimeZone    string `env:"TIME_ZONE" envDefault:"Europe/London"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Secret string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Email struct {
		From string `env:"FROM"`
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
			MaxRetries  int    `env:"MAX_RETRIES" envDefault:"3"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		EmailQueue     string `env:"EMAIL_QUEUE" envDefault:"email_queue"`
		SMSQueue       string `env:"SMS_QUEUE" envDefault:"sms_queue"`
		WhatsAppQueue  string `env:"WHATSAPP_QUEUE" envDefault:"whatsapp_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Notification struct {
		BatchWindow          int `env:"BATCH_WINDOW" envDefault:"300"` // 5 minutes
		FlushInterval        int `env:"FLUSH_INTERVAL" envDefault:"60"`
		FlushBatchSize       int `env:"FLUSH_BATCH_SIZE" envDefault:"50"`
		BroadcastConcurrency int `env:"BROADCAST_CONCURRENCY" envDefault:"8"`
		BroadcastLockTTL     int `env:"BROADCAST_LOCK_TTL" envDefault:"120"`
		WaitMillis           int `env:"WAIT_MILLIS" envDefault:"300"`
	} `envPrefix:"NOTIFICATION_"`
	Availability struct {
		MaxHours    float64 `env:"MAX_HOURS" envDefault:"16"`
		WindowHours int     `env:"WINDOW_HOURS" envDefault:"24"`
	} `envPrefix:"AVAILABILITY_"`
	Closure struct {
		AdjustmentThreshold float64 `env:"ADJUSTMENT_THRESHOLD" envDefault:"0.25"`
	} `envPrefix:"CLOSURE_"`
	Automation struct {
		Enabled  bool `env:"ENABLED" envDefault:"true"`
		Interval int  `env:"INTERVAL" envDefault:"60"`
	} `envPrefix:"AUTOMATION_"`
	Seed struct {
		AgencyID int64 `env:"AGENCY_ID" envDefault:"1"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// first error only, keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Database.QueryTimeout) * time.Second
}

func (c *Config) TransactionTimeout() time.Duration {
	return time.Duration(c.Database.TransactionTimeout) * time.Second
}
