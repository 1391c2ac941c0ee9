//go:build wireinject
// +build wireinject

package di

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

import (
	"context"

	"github.com/google/wire"

	"clubhub-backend/application/services"
	"clubhub-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideClock,
	ProvideMetrics,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideTable,
	ProvideUserRepository,
	ProvideClubRepository,
	ProvideMembershipRepository,
	ProvideEventPublisher,
	ProvideAuthorizationService,
	services.NewClubAuthorizationService,
	services.NewClubService,
	services.NewMembershipService,
	services.NewUserService,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
