package repositories

import (
	"context"

	"stockdesk/internal/adapters/persistence/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Append inserts one log entry
func (r *messageRepository) Append(ctx context.Context, entry *models.MessageLog) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(entry).Error, "messageRepo.Append")
}

// ListByContact lists a contact's entries oldest first. The auto-increment id
// breaks ties between entries sharing a timestamp.
func (r *messageRepository) ListByContact(ctx context.Context, contactKey string) ([]*models.MessageLog, error) {
	var entries []*models.MessageLog
	err := r.db.WithContext(ctx).
		Where("contact_key = ?", contactKey).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.ListByContact")
	}
	return entries, nil
}

// Count counts all log entries
func (r *messageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessageLog{}).Count(&count).Error
	return count, errors.Wrap(err, "messageRepo.Count")
}
