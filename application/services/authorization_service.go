package services

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"clubhub-backend/domain/authorization"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/pkg/cache"
	"clubhub-backend/pkg/observability"
)

const (
	DefaultCapabilityCacheTTL = 5 * time.Minute
	DefaultSweepInterval      = time.Minute
)

// AuthorizationConfig tunes the system capability cache
type AuthorizationConfig struct {
	CacheTTL      time.Duration
	SweepInterval time.Duration
}

// AuthorizationResult is the audit record of a single decision
type AuthorizationResult struct {
	Granted    bool                     `json:"granted"`
	Reason     string                   `json:"reason"`
	Capability authorization.Capability `json:"capability"`
	UserID     string                   `json:"userId"`
	Resource   string                   `json:"resource,omitempty"`
	Timestamp  time.Time                `json:"timestamp"`
}

// AuthorizationService answers system-level capability questions. Derived
// capability sets are cached per user and system role.
type AuthorizationService struct {
	cache    *cache.TTLCache[[]authorization.Capability]
	clock    clock.Clock
	interval time.Duration
	logger   *zap.Logger
	metrics  *observability.Collector
}

// NewAuthorizationService creates the service. A nil clock uses wall time.
func NewAuthorizationService(cfg AuthorizationConfig, clk clock.Clock, logger *zap.Logger, metrics *observability.Collector) *AuthorizationService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCapabilityCacheTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if clk == nil {
		clk = clock.New()
	}
	return &AuthorizationService{
		cache:    cache.New[[]authorization.Capability](cfg.CacheTTL, clk),
		clock:    clk,
		interval: cfg.SweepInterval,
		logger:   logger,
		metrics:  metrics,
	}
}

func cacheKey(userID string, role entities.SystemRole) string {
	return userID + "|" + string(role)
}

func (s *AuthorizationService) capabilities(identity authorization.Identity) []authorization.Capability {
	key := cacheKey(identity.UserID, identity.SystemRole)
	if caps, ok := s.cache.Get(key); ok {
		s.metrics.RecordCache(true)
		return caps
	}
	s.metrics.RecordCache(false)

	caps := authorization.DeriveCapabilities(identity.SystemRole)
	s.cache.Set(key, caps)
	return caps
}

// HasSystemCapability reports whether the identity's system role grants capability.
// Unauthenticated identities hold nothing.
func (s *AuthorizationService) HasSystemCapability(identity authorization.Identity, capability authorization.Capability) bool {
	if !identity.Valid() {
		return false
	}
	return authorization.Contains(s.capabilities(identity), capability)
}

// Authorize evaluates and audits a system capability check. It never fails;
// any doubt yields a denial.
func (s *AuthorizationService) Authorize(identity authorization.Identity, capability authorization.Capability, resource string) AuthorizationResult {
	result := AuthorizationResult{
		Capability: capability,
		UserID:     identity.UserID,
		Resource:   resource,
		Timestamp:  s.clock.Now().UTC(),
	}

	switch {
	case !identity.Valid():
		result.Reason = "identity is not authenticated"
	case s.HasSystemCapability(identity, capability):
		result.Granted = true
		result.Reason = "granted by system role " + string(identity.SystemRole)
	default:
		result.Reason = "system role " + string(identity.SystemRole) + " lacks " + string(capability)
	}

	s.audit(result)
	return result
}

func (s *AuthorizationService) audit(result AuthorizationResult) {
	s.metrics.RecordAuthorization(string(result.Capability), result.Granted)

	fields := []zap.Field{
		zap.String("userID", result.UserID),
		zap.String("capability", string(result.Capability)),
		zap.Bool("granted", result.Granted),
		zap.String("reason", result.Reason),
		zap.Time("timestamp", result.Timestamp),
	}
	if result.Resource != "" {
		fields = append(fields, zap.String("resource", result.Resource))
	}
	if result.Granted {
		s.logger.Info("Authorization decision", fields...)
	} else {
		s.logger.Warn("Authorization decision", fields...)
	}
}

// ClearUserCache drops the user's cached entries for every system role
func (s *AuthorizationService) ClearUserCache(userID string) {
	removed := s.cache.Delete(cacheKey(userID, entities.SystemRoleUser), cacheKey(userID, entities.SystemRoleSiteAdmin))
	s.logger.Debug("Cleared capability cache", zap.String("userID", userID), zap.Int("removed", removed))
}

// SweepExpired removes expired cache entries
func (s *AuthorizationService) SweepExpired() int {
	return s.cache.Sweep()
}

// Start runs the periodic sweep until ctx is cancelled. It blocks.
func (s *AuthorizationService) Start(ctx context.Context) {
	s.logger.Info("Capability cache sweeper started", zap.Duration("interval", s.interval))
	s.cache.Run(ctx, s.interval, func(removed int) {
		if removed > 0 {
			s.logger.Debug("Swept capability cache", zap.Int("removed", removed))
		}
	})
	s.logger.Info("Capability cache sweeper stopped")
}
