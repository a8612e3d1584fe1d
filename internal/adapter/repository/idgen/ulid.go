// Package idgen produces identifiers for users, accounts, transactions and events.
package idgen

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ULID implements usecase.IDGenerator. IDs sort by creation time, which keeps
// "ORDER BY created_at, id" stable for records sharing a timestamp.
type ULID struct {
	now func() time.Time
}

// NewULID creates a ULID generator.
func NewULID() *ULID {
	return &ULID{now: time.Now}
}

// Generate returns a new ULID string.
func (g *ULID) Generate() string {
	return ulid.MustNew(ulid.Timestamp(g.now()), ulid.DefaultEntropy()).String()
}
