package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"stockdesk/internal/adapters/persistence/models"
	"stockdesk/internal/adapters/persistence/repositories"
	"stockdesk/internal/config"
	"stockdesk/internal/core/domain"
	"stockdesk/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthGate verifies credentials, hands out session principals and enforces
// role checks on protected operations.
type AuthGate struct {
	accounts   repositories.AccountRepository
	bcryptCost int
	log        *zap.Logger

	dummyOnce sync.Once
	dummyHash string

	// ended session tokens, token id -> token expiry
	revoked map[string]time.Time
	mu      sync.RWMutex
	now     func() time.Time
}

// NewAuthGate creates a new auth gate
func NewAuthGate(accounts repositories.AccountRepository, cfg *config.Config, log *zap.Logger) *AuthGate {
	return &AuthGate{
		accounts:   accounts,
		bcryptCost: cfg.Security.BcryptCost,
		log:        log.Named("auth"),
		revoked:    make(map[string]time.Time),
		now:        time.Now,
	}
}

// Authenticate checks a display name and secret and returns the session for
// the account. Unknown names and wrong secrets both yield
// domain.ErrInvalidCredentials.
func (g *AuthGate) Authenticate(ctx context.Context, displayName, secret string) (*domain.Session, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || secret == "" {
		return nil, validationError("display name and secret are required")
	}

	account, err := g.accounts.GetByDisplayName(ctx, displayName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// burn the same bcrypt time as a real compare
			password.Verify(secret, g.placeholderHash())
			g.log.Info("login rejected", zap.String("display_name", displayName))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, persistenceError("authenticate", err)
	}

	if !password.Verify(secret, account.CredentialHash) {
		g.log.Info("login rejected", zap.String("display_name", displayName))
		return nil, domain.ErrInvalidCredentials
	}

	g.log.Info("login succeeded", zap.String("display_name", account.DisplayName), zap.String("role", account.Role))
	return account.Session(), nil
}

// Authorize passes when a session is present, has not been ended and, if
// requiredRole is not empty, carries exactly that role.
func (g *AuthGate) Authorize(session *domain.Session, requiredRole string) error {
	if !session.Active() || g.isRevoked(session.TokenID) {
		return domain.ErrUnauthenticated
	}
	if requiredRole != "" && session.Role != requiredRole {
		return domain.ErrForbidden
	}
	return nil
}

// CreateAccount registers a new account and returns its id. The display name
// is claimed by a conditional insert, so two concurrent calls with the same
// name leave exactly one row and one of them gets domain.ErrDuplicateAccount.
func (g *AuthGate) CreateAccount(ctx context.Context, displayName, secret, role string) (string, error) {
	displayName = strings.TrimSpace(displayName)
	role = strings.TrimSpace(role)
	if displayName == "" || secret == "" || role == "" {
		return "", validationError("display name, secret and role are required")
	}

	hash, err := password.HashWithCost(secret, g.bcryptCost)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return "", validationError("secret must be at most 72 bytes")
		}
		return "", err
	}

	account := &models.Account{
		ID:             uuid.NewString(),
		DisplayName:    displayName,
		CredentialHash: hash,
		Role:           role,
	}

	created, err := g.accounts.CreateIfAbsent(ctx, account)
	if err != nil {
		return "", persistenceError("create account", err)
	}
	if !created {
		return "", domain.ErrDuplicateAccount
	}

	g.log.Info("account created",
		zap.String("id", account.ID),
		zap.String("display_name", account.DisplayName),
		zap.String("role", account.Role),
	)
	return account.ID, nil
}

// EndSession clears the session in place. When the session came from a
// token, that token is refused by Authorize until it expires. Ending a nil or
// already cleared session does nothing.
func (g *AuthGate) EndSession(session *domain.Session) {
	if !session.Active() {
		return
	}
	if session.TokenID != "" {
		g.revoke(session.TokenID, session.ExpiresAt)
	}
	g.log.Info("session ended", zap.String("display_name", session.DisplayName))
	*session = domain.Session{}
}

func (g *AuthGate) revoke(tokenID string, expiresAt time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for id, exp := range g.revoked {
		if !exp.After(now) {
			delete(g.revoked, id)
		}
	}
	if expiresAt.After(now) {
		g.revoked[tokenID] = expiresAt
	}
}

func (g *AuthGate) isRevoked(tokenID string) bool {
	if tokenID == "" {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	exp, ok := g.revoked[tokenID]
	return ok && exp.After(g.now())
}

func (g *AuthGate) placeholderHash() string {
	g.dummyOnce.Do(func() {
		h, err := password.HashWithCost(uuid.NewString(), g.bcryptCost)
		if err == nil {
			g.dummyHash = h
		}
	})
	return g.dummyHash
}
