package config

import (
	"context"
	"errors"

	"stockdesk/internal/core/domain"

	"go.uber.org/zap"
)

// AccountCreator is the part of the auth gate the seeder needs
type AccountCreator interface {
	CreateAccount(ctx context.Context, displayName, secret, role string) (string, error)
}

// Seeder handles startup seeding
type Seeder struct {
	accounts AccountCreator
	admin    AdminConfig
	log      *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(accounts AccountCreator, admin AdminConfig, log *zap.Logger) *Seeder {
	return &Seeder{accounts: accounts, admin: admin, log: log}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	s.log.Info("running seeders")

	if err := s.seedAdminAccount(ctx); err != nil {
		return err
	}

	s.log.Info("seeding completed")
	return nil
}

// seedAdminAccount creates the configured admin account if it does not exist.
// The insert is conditional on the display name, so concurrent instances
// starting together still end up with a single admin row.
func (s *Seeder) seedAdminAccount(ctx context.Context) error {
	if s.admin.Username == "" || s.admin.Password == "" {
		s.log.Warn("admin seed skipped: ADMIN_USERNAME or ADMIN_PASSWORD not set")
		return nil
	}

	id, err := s.accounts.CreateAccount(ctx, s.admin.Username, s.admin.Password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrDuplicateAccount) {
		s.log.Info("admin account already exists", zap.String("username", s.admin.Username))
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Info("admin account created", zap.String("username", s.admin.Username), zap.String("id", id))
	return nil
}
