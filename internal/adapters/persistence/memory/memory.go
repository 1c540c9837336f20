// Package memory keeps all repositories in process memory. It backs
// DB_DRIVER=memory and the service tests. A single mutex per store gives each
// call the same atomicity MySQL gives a single statement.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stockdesk/internal/adapters/persistence/models"
	"stockdesk/internal/adapters/persistence/repositories"
	"stockdesk/internal/core/domain"
)

// Store holds every table
type Store struct {
	mu       sync.Mutex
	accounts map[string]*models.Account // keyed by display name
	contacts map[string]*models.Contact
	messages []*models.MessageLog
	products []*models.Product
	nextMsg  uint64
	nextProd uint
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
		contacts: make(map[string]*models.Contact),
		now:      time.Now,
	}
}

// Accounts returns the store as an AccountRepository
func (s *Store) Accounts() repositories.AccountRepository { return (*accountRepo)(s) }

// Contacts returns the store as a ContactRepository
func (s *Store) Contacts() repositories.ContactRepository { return (*contactRepo)(s) }

// Messages returns the store as a MessageRepository
func (s *Store) Messages() repositories.MessageRepository { return (*messageRepo)(s) }

// Products returns the store as a ProductRepository
func (s *Store) Products() repositories.ProductRepository { return (*productRepo)(s) }

type accountRepo Store

func (r *accountRepo) GetByDisplayName(ctx context.Context, displayName string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[displayName]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *accountRepo) CreateIfAbsent(ctx context.Context, account *models.Account) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.DisplayName]; ok {
		return false, nil
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = r.now()
	}
	cp := *account
	r.accounts[account.DisplayName] = &cp
	return true, nil
}

func (r *accountRepo) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.accounts)), nil
}

type contactRepo Store

func (r *contactRepo) EnsureExists(ctx context.Context, contact *models.Contact) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[contact.ExternalID]; ok {
		return false, nil
	}
	cp := *contact
	r.contacts[contact.ExternalID] = &cp
	return true, nil
}

func (r *contactRepo) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.contacts)), nil
}

// Contact returns a copy of the stored contact, for inspection
func (s *Store) Contact(externalID string) (models.Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[externalID]
	if !ok {
		return models.Contact{}, false
	}
	return *c, true
}

type messageRepo Store

func (r *messageRepo) Append(ctx context.Context, entry *models.MessageLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !entry.Direction.Valid() {
		return fmt.Errorf("invalid message direction %q", entry.Direction)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextMsg++
	entry.ID = r.nextMsg
	cp := *entry
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *messageRepo) ListByContact(ctx context.Context, contactKey string) ([]*models.MessageLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.MessageLog
	for _, m := range r.messages {
		if m.ContactKey == contactKey {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *messageRepo) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages)), nil
}

type productRepo Store

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextProd++
	product.ID = r.nextProd
	if product.CreatedAt.IsZero() {
		product.CreatedAt = r.now()
	}
	cp := *product
	r.products = append(r.products, &cp)
	return nil
}

func (r *productRepo) List(ctx context.Context, offset, limit int) ([]*models.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	total := int64(len(r.products))
	out := make([]*models.Product, 0, limit)
	// newest first
	for i := len(r.products) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		cp := *r.products[i]
		out = append(out, &cp)
	}
	return out, total, nil
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}
