package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"clubhub-backend/application/ports"
	"clubhub-backend/application/services"
	"clubhub-backend/infrastructure/config"
	"clubhub-backend/infrastructure/messaging"
	"clubhub-backend/infrastructure/messaging/eventbridge"
	"clubhub-backend/infrastructure/persistence/abstractions"
	"clubhub-backend/infrastructure/persistence/dynamodb"
	"clubhub-backend/infrastructure/persistence/memory"
	"clubhub-backend/interfaces/http/rest"
	"clubhub-backend/pkg/observability"
)

// ProvideLogLevel creates the adjustable level shared by the logger and the config watcher
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	lvl, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return zap.AtomicLevel{}, err
	}
	return zap.NewAtomicLevelAt(lvl), nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(
		zap.String("service", cfg.Observability.ServiceName),
		zap.String("environment", cfg.Environment),
	), nil
}

// ProvideClock supplies wall-clock time
func ProvideClock() clock.Clock {
	return clock.New()
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are off
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Observability.EnableMetrics {
		return nil
	}
	return observability.NewCollector(cfg.Observability.MetricsNamespace)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS.Region),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config, cfg *config.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg, func(o *awseventbridge.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
}

// ProvideTable selects the storage backend
func ProvideTable(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) abstractions.Table {
	if cfg.Persistence.Backend == config.BackendMemory {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewTable()
	}
	return dynamodb.NewTable(client, dynamodb.TableConfig{
		TableName: cfg.Persistence.TableName,
		GSI1Name:  cfg.Persistence.GSI1Name,
		GSI2Name:  cfg.Persistence.GSI2Name,
		Breaker: dynamodb.BreakerConfig{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureRatio,
			MinRequests:      cfg.Breaker.MinRequests,
		},
	}, logger)
}

// ProvideUserRepository creates a user repository
func ProvideUserRepository(table abstractions.Table, logger *zap.Logger, metrics *observability.Collector) ports.UserRepository {
	return dynamodb.NewUserRepository(table, logger, metrics)
}

// ProvideClubRepository creates a club repository
func ProvideClubRepository(table abstractions.Table, logger *zap.Logger, metrics *observability.Collector) ports.ClubRepository {
	return dynamodb.NewClubRepository(table, logger, metrics)
}

// ProvideMembershipRepository creates a membership repository
func ProvideMembershipRepository(table abstractions.Table, users ports.UserRepository, logger *zap.Logger, metrics *observability.Collector) ports.MembershipRepository {
	return dynamodb.NewMembershipRepository(table, users, logger, metrics)
}

// ProvideEventPublisher publishes to EventBridge, or only logs events when
// publishing is disabled or storage is in memory.
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger, metrics *observability.Collector) ports.EventPublisher {
	if !cfg.Events.Enabled || cfg.Persistence.Backend == config.BackendMemory {
		return messaging.NewLoggingPublisher(logger, metrics)
	}
	return eventbridge.NewPublisher(client, cfg.Events.EventBusName, logger, metrics)
}

// ProvideAuthorizationService creates the system capability resolver
func ProvideAuthorizationService(cfg *config.Config, clk clock.Clock, logger *zap.Logger, metrics *observability.Collector) *services.AuthorizationService {
	return services.NewAuthorizationService(services.AuthorizationConfig{
		CacheTTL:      cfg.Authorization.CacheTTL,
		SweepInterval: cfg.Authorization.SweepInterval,
	}, clk, logger, metrics)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	clubs *services.ClubService,
	memberships *services.MembershipService,
	users *services.UserService,
	metrics *observability.Collector,
	clk clock.Clock,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(rest.Options{
		EnableCORS:            cfg.Server.EnableCORS,
		AllowedOrigins:        cfg.Server.AllowedOrigins,
		RequestsPerMinute:     cfg.Server.RequestsPerMinute,
		AllowUnverifiedTokens: cfg.Authorization.AllowUnverifiedTokens,
		Debug:                 cfg.IsDevelopment(),
	}, clubs, memberships, users, metrics, clk, logger)
}
