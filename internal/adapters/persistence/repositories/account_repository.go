package repositories

import (
	"context"

	"stockdesk/internal/adapters/persistence/models"
	"stockdesk/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// GetByDisplayName gets an account by its display name
func (r *accountRepository) GetByDisplayName(ctx context.Context, displayName string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("display_name = ?", displayName).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "accountRepo.GetByDisplayName")
	}
	return &account, nil
}

// CreateIfAbsent inserts with ON DUPLICATE KEY UPDATE id=id, so a clash on
// the display_name unique index is a no-op with zero affected rows.
func (r *accountRepository) CreateIfAbsent(ctx context.Context, account *models.Account) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, errors.Wrap(result.Error, "accountRepo.CreateIfAbsent")
	}
	return result.RowsAffected == 1, nil
}

// Count counts all accounts
func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).Count(&count).Error
	return count, errors.Wrap(err, "accountRepo.Count")
}
