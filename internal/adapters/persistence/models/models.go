package models

import (
	"fmt"
	"time"

	"stockdesk/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth tables
// ============================================================

// Account represents accounts table
type Account struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	DisplayName    string    `gorm:"uniqueIndex;size:100;not null" json:"display_name"`
	CredentialHash string    `gorm:"size:255;not null" json:"-"`
	Role           string    `gorm:"size:30;not null" json:"role"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// Session builds the session principal for this account
func (a *Account) Session() *domain.Session {
	return &domain.Session{
		PrincipalID: a.ID,
		DisplayName: a.DisplayName,
		Role:        a.Role,
	}
}

// ============================================================
// Messaging ledger tables
// ============================================================

// Contact represents contacts table. One row per external channel identifier.
type Contact struct {
	ExternalID  string    `gorm:"primaryKey;size:64" json:"external_id"`
	FirstSeenAt time.Time `gorm:"not null;precision:6" json:"first_seen_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// MessageLog represents message_logs table. Rows are append-only.
type MessageLog struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ContactKey string           `gorm:"size:64;not null;index:idx_message_logs_contact_time,priority:1" json:"contact_key"`
	Body       string           `gorm:"type:text" json:"body"`
	Direction  domain.Direction `gorm:"size:8;not null" json:"direction"`
	CreatedAt  time.Time        `gorm:"not null;precision:6;index:idx_message_logs_contact_time,priority:2" json:"timestamp"`
}

func (MessageLog) TableName() string {
	return "message_logs"
}

// BeforeCreate rejects entries with an unknown direction
func (m *MessageLog) BeforeCreate(*gorm.DB) error {
	if !m.Direction.Valid() {
		return fmt.Errorf("invalid message direction %q", m.Direction)
	}
	return nil
}

// ============================================================
// Catalog tables
// ============================================================

// Product represents products table
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	Price     float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&Contact{},
		&MessageLog{},
		&Product{},
	)
}
