package domain

import "time"

// Event types
const (
	EventTypeAccountCreated       = "account.created"
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeUserPromoted         = "user.promoted"
)

// Aggregate types
const (
	AggregateTypeAccount     = "account"
	AggregateTypeTransaction = "transaction"
	AggregateTypeUser        = "user"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewTransactionCompletedEvent builds the outbox event for a recorded transaction.
func NewTransactionCompletedEvent(id string, t *Transaction) *OutboxEvent {
	payload := map[string]any{
		"transaction_id": t.ID,
		"kind":           string(t.Kind()),
		"amount_pence":   int64(t.Amount),
		"amount":         t.Amount.String(),
		"user_id":        t.UserID,
	}
	if t.SourceAccountID != nil {
		payload["source_account_id"] = *t.SourceAccountID
	}
	if t.DestAccountID != nil {
		payload["dest_account_id"] = *t.DestAccountID
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   t.ID,
		AggregateType: AggregateTypeTransaction,
		EventType:     EventTypeTransactionCompleted,
		Payload:       payload,
		CreatedAt:     t.CreatedAt,
	}
}

// NewAccountCreatedEvent builds the outbox event for a new account.
func NewAccountCreatedEvent(id string, a *Account) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id": a.ID,
			"owner_id":   a.OwnerID,
			"type":       string(a.Type),
		},
		CreatedAt: a.CreatedAt,
	}
}

// NewUserPromotedEvent builds the outbox event for a role change to admin.
func NewUserPromotedEvent(id, userID, promotedBy string, bootstrap bool, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   userID,
		AggregateType: AggregateTypeUser,
		EventType:     EventTypeUserPromoted,
		Payload: map[string]any{
			"user_id":     userID,
			"promoted_by": promotedBy,
			"bootstrap":   bootstrap,
		},
		CreatedAt: now,
	}
}
