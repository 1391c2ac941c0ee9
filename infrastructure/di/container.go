package di

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/application/services"
	"clubhub-backend/infrastructure/config"
	"clubhub-backend/interfaces/http/rest"
	"clubhub-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	LogLevel zap.AtomicLevel
	Metrics  *observability.Collector
	Clock    clock.Clock

	Clubs       ports.ClubRepository
	Memberships ports.MembershipRepository
	Users       ports.UserRepository
	Publisher   ports.EventPublisher

	Authorization     *services.AuthorizationService
	ClubAuthorization *services.ClubAuthorizationService
	ClubService       *services.ClubService
	MembershipService *services.MembershipService
	UserService       *services.UserService

	Router *rest.Router
}
