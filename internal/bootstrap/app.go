package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"surveychat/internal/config"
	"surveychat/internal/model"
	mysqlClient "surveychat/internal/platform/mysql"
	rabbitmqClient "surveychat/internal/platform/rabbitmq"
	redisClient "surveychat/internal/platform/redis"
	"surveychat/internal/repository"
	"surveychat/internal/sessionstore"
	"surveychat/internal/worker"
)

// App wires the process dependencies: the session store, and the
// optional transcript archive (RabbitMQ + MySQL) when enabled.
type App struct {
	Config        *config.Config
	Store         sessionstore.Store
	Redis         *redis.Client
	MySQL         *gorm.DB
	MQConn        *amqp.Connection
	TurnPublisher *rabbitmqClient.TurnPublisher
	ArchiveWorker *worker.TurnArchiveWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	app := &App{
		Config:    cfg,
		StartedAt: time.Now(),
	}

	switch sessionstore.StoreType(cfg.Store.Driver) {
	case sessionstore.StoreTypeMemory:
		store, err := sessionstore.NewStore(sessionstore.StoreTypeMemory)
		if err != nil {
			return nil, err
		}
		app.Store = store

	case sessionstore.StoreTypeRedis:
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		store, err := sessionstore.NewStore(
			sessionstore.StoreTypeRedis,
			sessionstore.WithRedisClient(redisCli),
		)
		if err != nil {
			return nil, err
		}
		app.Redis = redisCli
		app.Store = store

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Archive.Enabled {
		mysqlDB, err := mysqlClient.New(ctx, cfg.ArchiveMySQLDSN())
		if err != nil {
			return nil, err
		}
		if err := mysqlDB.AutoMigrate(&model.TurnEvent{}); err != nil {
			return nil, fmt.Errorf("auto migrate archive table failed: %w", err)
		}

		mqConn, err := rabbitmqClient.New(ctx, cfg.Archive.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}

		turnRepo := repository.NewTurnEventRepository(mysqlDB)
		archiveWorker := worker.NewTurnArchiveWorker(mqConn, turnRepo, cfg.Archive.TurnQueue)
		if err := archiveWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start archive worker failed: %w", err)
		}

		app.MySQL = mysqlDB
		app.MQConn = mqConn
		app.TurnPublisher = rabbitmqClient.NewTurnPublisher(mqConn, cfg.Archive.TurnQueue)
		app.ArchiveWorker = archiveWorker
	}

	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.ArchiveWorker != nil {
		a.ArchiveWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
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
	return closeErr
}
