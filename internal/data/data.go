// Package data opens the configured stores and exposes the user and task
// repositories.
package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/internal/data/memory"
	"github.com/satvikmishra44/taskhub/internal/data/repository"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Data encapsulates all data layer dependencies.
type Data struct {
	client       *mongo.Client
	redis        *redis.Client
	transactions bool

	Users repository.UserRepository
	Tasks repository.TaskRepository
}

// New opens the stores named by conf and returns a cleanup function.
func New(ctx context.Context, conf *config.Data) (*Data, func(), error) {
	if conf == nil {
		return nil, nil, errors.New("data configuration is nil")
	}

	var (
		d   *Data
		err error
	)
	switch conf.Driver {
	case config.DriverMemory:
		d = NewMemory()
	case config.DriverMongoDB:
		d, err = newMongo(ctx, conf.MongoDB)
	default:
		err = fmt.Errorf("unsupported data driver %q", conf.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	if conf.Redis != nil && conf.Redis.Addr != "" {
		rc, err := newRedisClient(ctx, conf.Redis)
		if err != nil {
			_ = d.Close()
			return nil, nil, err
		}
		d.redis = rc
	}

	cleanup := func() {
		if err := d.Close(); err != nil {
			logger.Errorf(context.Background(), "cleanup data error: %v", err)
		}
	}
	return d, cleanup, nil
}

// NewMemory returns a Data backed by in-process repositories.
func NewMemory() *Data {
	store := memory.NewStore()
	return &Data{Users: store.Users(), Tasks: store.Tasks()}
}

func newMongo(ctx context.Context, conf *config.MongoDB) (*Data, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info(ctx, "connected to MongoDB", "database", conf.Database, "transactions", conf.Transactions)

	db := client.Database(conf.Database)
	users, err := repository.NewUserRepository(ctx, db)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	tasks, err := repository.NewTaskRepository(ctx, db)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Data{
		client:       client,
		transactions: conf.Transactions,
		Users:        users,
		Tasks:        tasks,
	}, nil
}

func newRedisClient(ctx context.Context, conf *config.Redis) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:         conf.Addr,
		Username:     conf.Username,
		Password:     conf.Password,
		DB:           conf.Db,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		DialTimeout:  conf.DialTimeout,
		PoolSize:     10,
	})

	timeout := conf.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis connect error: %w", err)
	}
	return rc, nil
}

// Transactional reports whether WithTx runs fn inside a database transaction.
func (d *Data) Transactional() bool {
	return d.client != nil && d.transactions
}

// WithTx runs fn in a MongoDB transaction when enabled, otherwise directly.
// Callers that are not transactional must compensate on failure.
func (d *Data) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !d.Transactional() {
		return fn(ctx)
	}

	session, err := d.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sctx mongo.SessionContext) (any, error) {
		return nil, fn(sctx)
	})
	return err
}

// Redis returns the redis client, or nil when redis is not configured.
func (d *Data) Redis() *redis.Client {
	return d.redis
}

// Ping checks every configured store.
func (d *Data) Ping(ctx context.Context) error {
	if err := d.Users.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if d.redis != nil {
		if err := d.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close closes all connections.
func (d *Data) Close() error {
	var errs []error
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.client.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
