// Package di wires the application together: configuration, logging,
// persistence, the domain store and the HTTP router.
package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"concepter-backend/application/ports"
	"concepter-backend/application/services"
	domainconfig "concepter-backend/domain/config"
	"concepter-backend/domain/core/aggregates"
	"concepter-backend/domain/kinds"
	"concepter-backend/infrastructure/config"
	"concepter-backend/infrastructure/persistence/dynamodb"
	"concepter-backend/infrastructure/persistence/memory"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideProjectRepository selects the persistence backend
func ProvideProjectRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.ProjectRepository, error) {
	switch cfg.PersistenceBackend {
	case "memory":
		return memory.NewProjectRepository(), nil
	case "dynamodb":
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		return dynamodb.NewProjectRepository(ProvideDynamoDBClient(awsCfg), cfg.DynamoDBTable, logger), nil
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", cfg.PersistenceBackend)
	}
}

// ProvideDomainConfig selects the depth limits and defaults for the
// current environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideNodeStore creates the registry backing one graph
func ProvideNodeStore(dcfg *domainconfig.DomainConfig, logger *zap.Logger) *aggregates.NodeStore {
	return aggregates.NewNodeStore(dcfg, logger)
}

// ProvideKindRegistry returns the registry of built-in node kinds
func ProvideKindRegistry() *kinds.Registry {
	return kinds.DefaultRegistry()
}

// ProvideGraphService assembles the serialized-access service boundary
func ProvideGraphService(
	store *aggregates.NodeStore,
	registry *kinds.Registry,
	projects ports.ProjectRepository,
	logger *zap.Logger,
) *services.GraphService {
	return services.NewGraphService(store, registry, projects, logger)
}

// Container holds the assembled application
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Service *services.GraphService
}

// InitializeContainer builds the full dependency graph
func InitializeContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	dcfg := ProvideDomainConfig(cfg)
	if err := dcfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating domain config: %w", err)
	}

	projects, err := ProvideProjectRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store := ProvideNodeStore(dcfg, logger)
	service := ProvideGraphService(store, ProvideKindRegistry(), projects, logger)

	logger.Info("container initialized",
		zap.String("environment", cfg.Environment),
		zap.String("persistence", cfg.PersistenceBackend),
	)
	return &Container{
		Config:  cfg,
		Logger:  logger,
		Service: service,
	}, nil
}

// Shutdown flushes buffered log entries
func (c *Container) Shutdown() {
	_ = c.Logger.Sync()
}
