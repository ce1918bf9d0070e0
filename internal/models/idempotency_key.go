package models

import "time"

// IdempotencyKey represents an idempotency key row.
type IdempotencyKey struct {
	Key             string     `db:"key"`
	Operation       string     `db:"operation"`
	RelatedEntityID *string    `db:"related_entity_id"`
	CreatedAt       time.Time  `db:"created_at"`
	ExpiresAt       time.Time  `db:"expires_at"`
	Used            bool       `db:"used"`
	UsedAt          *time.Time `db:"used_at"`
	Successful      bool       `db:"successful"`
	ResultHash      *string    `db:"result_hash"`
}
