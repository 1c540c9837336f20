package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"stockdesk/internal/adapters/persistence/models"
	"stockdesk/internal/adapters/persistence/repositories"
	"stockdesk/internal/core/domain"

	"go.uber.org/zap"
)

// DefaultReplyText is the canned answer sent for every inbound message
const DefaultReplyText = "Hello! Thanks for contacting us. " +
	"A member of our team will get back to you shortly. " +
	"Reply HELP at any time to see this message again."

// ReplyPolicy turns an inbound message body into the reply text
type ReplyPolicy interface {
	Reply(body string) string
}

// ReplyFunc adapts a plain function to ReplyPolicy
type ReplyFunc func(body string) string

// Reply calls f(body)
func (f ReplyFunc) Reply(body string) string { return f(body) }

// CannedReply answers every message with the same text
type CannedReply struct {
	Text string
}

// Reply returns the canned text, or DefaultReplyText when Text is empty
func (c CannedReply) Reply(string) string {
	if c.Text == "" {
		return DefaultReplyText
	}
	return c.Text
}

// ContactLedger keeps one contact per external identifier and an
// append-only log of the messages exchanged with it.
type ContactLedger struct {
	contacts repositories.ContactRepository
	messages repositories.MessageRepository
	policy   ReplyPolicy
	now      func() time.Time
	log      *zap.Logger

	clockMu sync.Mutex
	last    time.Time // latest stamp handed out
}

// NewContactLedger creates a new contact ledger. A nil policy uses CannedReply.
func NewContactLedger(
	contacts repositories.ContactRepository,
	messages repositories.MessageRepository,
	policy ReplyPolicy,
	log *zap.Logger,
) *ContactLedger {
	if policy == nil {
		policy = CannedReply{}
	}
	return &ContactLedger{
		contacts: contacts,
		messages: messages,
		policy:   policy,
		now:      time.Now,
		log:      log.Named("ledger"),
	}
}

// SetClock replaces the ledger's time source
func (l *ContactLedger) SetClock(now func() time.Time) {
	l.now = now
}

// RecordInbound makes sure a contact exists for externalID and appends the
// inbound message. An empty body is allowed.
func (l *ContactLedger) RecordInbound(ctx context.Context, externalID, body string) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return validationError("external id is required")
	}

	at := l.timestamp()
	created, err := l.contacts.EnsureExists(ctx, &models.Contact{ExternalID: externalID, FirstSeenAt: at})
	if err != nil {
		return persistenceError("ensure contact", err)
	}
	if created {
		l.log.Info("new contact", zap.String("external_id", externalID))
	}

	return l.append(ctx, externalID, body, domain.DirectionInbound, at)
}

// RecordOutbound appends an outbound message. It does not check that the
// contact exists; callers record the inbound side of an exchange first.
func (l *ContactLedger) RecordOutbound(ctx context.Context, externalID, body string) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return validationError("external id is required")
	}
	return l.append(ctx, externalID, body, domain.DirectionOutbound, l.timestamp())
}

// ComputeReply returns the reply for an inbound body
func (l *ContactLedger) ComputeReply(body string) string {
	return l.policy.Reply(body)
}

// Exchange handles one inbound delivery: record it, compute the reply and
// record the reply.
func (l *ContactLedger) Exchange(ctx context.Context, externalID, body string) (string, error) {
	if err := l.RecordInbound(ctx, externalID, body); err != nil {
		return "", err
	}

	reply := l.ComputeReply(body)
	if err := l.RecordOutbound(ctx, externalID, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// History returns the contact's messages oldest first
func (l *ContactLedger) History(ctx context.Context, externalID string) ([]*models.MessageLog, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, validationError("external id is required")
	}

	entries, err := l.messages.ListByContact(ctx, externalID)
	if err != nil {
		return nil, persistenceError("message history", err)
	}
	return entries, nil
}

func (l *ContactLedger) append(ctx context.Context, externalID, body string, dir domain.Direction, at time.Time) error {
	entry := &models.MessageLog{
		ContactKey: externalID,
		Body:       body,
		Direction:  dir,
		CreatedAt:  at,
	}
	if err := l.messages.Append(ctx, entry); err != nil {
		return persistenceError("append "+string(dir)+" message", err)
	}

	l.log.Debug("message recorded",
		zap.String("external_id", externalID),
		zap.String("direction", string(dir)),
		zap.Int("body_len", len(body)),
	)
	return nil
}

// timestamp never goes backwards, even when the wall clock does, so history
// ordered by (created_at, id) matches recording order. It is truncated to the
// microsecond precision of the message_logs column.
func (l *ContactLedger) timestamp() time.Time {
	at := l.now().UTC().Truncate(time.Microsecond)

	l.clockMu.Lock()
	defer l.clockMu.Unlock()
	if at.Before(l.last) {
		at = l.last
	}
	l.last = at
	return at
}
