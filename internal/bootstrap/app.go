package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"newsbot/internal/config"
	"newsbot/internal/model"
	mysqlClient "newsbot/internal/platform/mysql"
	rabbitmqClient "newsbot/internal/platform/rabbitmq"
	redisClient "newsbot/internal/platform/redis"
	"newsbot/internal/repository"
	"newsbot/internal/worker"
)

type App struct {
	Config           *config.Config
	Logger           *zap.Logger
	MySQL            *gorm.DB
	Redis            *redis.Client
	MQConn           *amqp.Connection
	TranscriptWorker *worker.TranscriptPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Article{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ChatTranscript{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	var redisCli *redis.Client
	if cfg.NeedsRedis() {
		redisCli, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
	}

	var mqConn *amqp.Connection
	var transcriptWorker *worker.TranscriptPersistWorker
	if cfg.TranscriptsEnabled() {
		mqConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		transcriptRepo := repository.NewTranscriptRepository(mysqlDB)
		transcriptWorker = worker.NewTranscriptPersistWorker(mqConn, transcriptRepo, cfg.RabbitMQ.TranscriptQueue, logger)
		if err := transcriptWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start transcript worker failed: %w", err)
		}
	}

	return &App{
		Config:           cfg,
		Logger:           logger,
		MySQL:            mysqlDB,
		Redis:            redisCli,
		MQConn:           mqConn,
		TranscriptWorker: transcriptWorker,
		StartedAt:        time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.TranscriptWorker != nil {
		a.TranscriptWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	_ = a.Logger.Sync()
	return closeErr
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
