package repositories

import (
	"context"

	"stockdesk/internal/adapters/persistence/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// contactRepository implements ContactRepository interface
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// EnsureExists inserts the contact or does nothing when the external id is
// already present. first_seen_at of an existing row is never rewritten.
func (r *contactRepository) EnsureExists(ctx context.Context, contact *models.Contact) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(contact)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "contactRepo.EnsureExists")
	}
	return result.RowsAffected == 1, nil
}

// Count counts all contacts
func (r *contactRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contact{}).Count(&count).Error
	return count, errors.Wrap(err, "contactRepo.Count")
}
