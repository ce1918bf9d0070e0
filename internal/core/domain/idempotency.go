package domain

import "time"

// IdempotencyKey tracks one side-effecting operation so repeated command
// delivery is safe. The key string is the contract: idem_{operation}_{suffix},
// case-preserved, used verbatim as the lookup key. Callers may also supply
// their own key strings.
type IdempotencyKey struct {
	Key             string     `json:"key"`
	Operation       string     `json:"operation"`
	RelatedEntityID string     `json:"relatedEntityID"`
	CreatedAt       time.Time  `json:"createdAt"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	Used            bool       `json:"used"`
	UsedAt          *time.Time `json:"usedAt,omitempty"`
	Successful      bool       `json:"successful"`
	ResultHash      string     `json:"resultHash,omitempty"`
}

// IsExpired reports whether the key has aged out at the given instant.
func (k IdempotencyKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt.Before(now)
}
