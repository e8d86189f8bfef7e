package container

import (
	"context"
	"fmt"

	"marketplace-backend/internal/config"
	auctionhandler "marketplace-backend/internal/domains/auction/handler"
	auctionrepo "marketplace-backend/internal/domains/auction/repository"
	auctionservice "marketplace-backend/internal/domains/auction/service"
	userrepo "marketplace-backend/internal/domains/user/repository"
	infracache "marketplace-backend/internal/infrastructure/cache"
	"marketplace-backend/internal/infrastructure/database"
	"marketplace-backend/internal/infrastructure/queue"
	"marketplace-backend/pkg/jwt"
	"marketplace-backend/pkg/logger"
)

// Container wires the application dependency graph.
// Init order: config -> infrastructure -> repositories -> services -> handlers.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB         *database.PostgresDB
	Cache      *infracache.RedisCache
	JWTManager *jwt.Manager
	Enqueuer   queue.TaskEnqueuer

	// Repositories
	UserRepo    userrepo.UserRepository
	AuctionRepo auctionrepo.AuctionRepository

	// Services
	AuctionService auctionservice.AuctionService

	// Handlers
	AuctionHandler *auctionhandler.AuctionHandler
}

// NewContainer builds the full dependency graph
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := c.initInfrastructure(ctx); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", map[string]interface{}{
		"env": cfg.App.Environment,
	})

	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	c.DB = database.NewPostgresDB(dbConfig)
	if err := c.DB.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Cache = infracache.NewRedisCache(
		c.Config.Redis.Host,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
	)
	if err := c.Cache.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	c.JWTManager = jwt.NewManager(c.Config.JWT.Secret)

	c.Enqueuer = queue.NewTaskEnqueuer(
		c.Config.Redis.Host,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
	)

	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = userrepo.NewPostgresUserRepository(c.DB.Pool)
	c.AuctionRepo = auctionrepo.NewPostgresAuctionRepository(c.DB.Pool, c.Cache)
}

func (c *Container) initServices() {
	c.AuctionService = auctionservice.NewAuctionService(
		c.AuctionRepo,
		c.UserRepo,
		c.Cache,
		c.Enqueuer,
	)
}

func (c *Container) initHandlers() {
	c.AuctionHandler = auctionhandler.NewAuctionHandler(c.AuctionService)
}

// Cleanup releases infrastructure resources in reverse init order
func (c *Container) Cleanup() {
	if c.Enqueuer != nil {
		if err := c.Enqueuer.Close(); err != nil {
			logger.Error("failed to close task enqueuer", err)
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
	}

	logger.Info("container cleaned up", nil)
}
