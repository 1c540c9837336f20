package repositories

import (
	"context"

	"stockdesk/internal/adapters/persistence/models"
)

// AccountRepository defines account repository interface
type AccountRepository interface {
	// GetByDisplayName returns domain.ErrNotFound when no account matches.
	GetByDisplayName(ctx context.Context, displayName string) (*models.Account, error)
	// CreateIfAbsent inserts the account unless one with the same display name
	// exists. The check and the insert are a single statement.
	CreateIfAbsent(ctx context.Context, account *models.Account) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// ContactRepository defines contact repository interface
type ContactRepository interface {
	// EnsureExists inserts the contact if its external id is new and leaves an
	// existing row untouched. Reports whether a row was created.
	EnsureExists(ctx context.Context, contact *models.Contact) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// MessageRepository defines the append-only message log
type MessageRepository interface {
	Append(ctx context.Context, entry *models.MessageLog) error
	ListByContact(ctx context.Context, contactKey string) ([]*models.MessageLog, error)
	Count(ctx context.Context) (int64, error)
}

// ProductRepository defines product repository interface
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	List(ctx context.Context, offset, limit int) ([]*models.Product, int64, error)
	Count(ctx context.Context) (int64, error)
}
