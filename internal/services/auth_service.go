package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/localnerve/authorizer-go"
	"github.com/localnerve/carmart/internal/config"
	"github.com/localnerve/carmart/internal/metrics"
	"github.com/localnerve/carmart/internal/utils"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var (
	authClient  *authorizer.AuthorizerClient
	authBreaker *gobreaker.CircuitBreaker[*authorizer.ValidateSessionResponse]
	authOnce    sync.Once
)

// ErrSessionInvalid is returned when the Authorizer rejects the session
var ErrSessionInvalid = errors.New("session is not valid")

// Principal is a validated session user
type Principal struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the principal carries any of roles
func (p *Principal) HasRole(roles ...string) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config, log *zap.Logger) error {
	var initErr error

	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		log.Info("initializing authorizer",
			zap.String("authorizer_url", cfg.AuthzURL),
			zap.String("client_id", cfg.AuthzClientID),
			zap.String("redirect_url", cfg.PublicURL),
		)

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, cfg.PublicURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}

		authBreaker = newAuthBreaker(log)
	})

	return initErr
}

func newAuthBreaker(log *zap.Logger) *gobreaker.CircuitBreaker[*authorizer.ValidateSessionResponse] {
	return gobreaker.NewCircuitBreaker[*authorizer.ValidateSessionResponse](gobreaker.Settings{
		Name:        "authorizer",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a rejected session is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransportError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.AuthorizerBreakerState.Set(breakerStateValue(to))
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

func isTransportError(err error) bool {
	var opErr *net.OpError
	var urlErr *url.Error
	return errors.As(err, &opErr) || errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded)
}

// ValidateSession validates a session cookie and returns the session user.
// Role checks are left to the caller.
func ValidateSession(cookie string) (*Principal, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	res, err := authBreaker.Execute(func() (*authorizer.ValidateSessionResponse, error) {
		return authClient.ValidateSession(&authorizer.ValidateSessionInput{
			Cookie: cookie,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}

	// Check if session is valid
	if res == nil || !res.IsValid || res.User == nil {
		return nil, ErrSessionInvalid
	}

	p := &Principal{UserID: res.User.ID}
	for _, r := range res.User.Roles {
		if r != nil {
			p.Roles = append(p.Roles, *r)
		}
	}
	return p, nil
}
