package dto

import "time"

// GenerateKeyRequest mints a new idempotency key.
type GenerateKeyRequest struct {
	Operation       string `json:"operation" binding:"required"`
	RelatedEntityID string `json:"relatedEntityID"`
	TTLSeconds      int    `json:"ttlSeconds"` // 0 means the configured default
}

// MarkKeyUsedRequest records the outcome of the operation behind a key.
type MarkKeyUsedRequest struct {
	Successful bool   `json:"successful"`
	ResultHash string `json:"resultHash"`
}

// KeyStatusResponse reports an idempotency key's state without mutating it.
type KeyStatusResponse struct {
	Key        string     `json:"key"`
	Exists     bool       `json:"exists"`
	Used       bool       `json:"used"`
	Successful bool       `json:"successful"`
	ResultHash string     `json:"resultHash,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// CleanupResponse reports how many expired keys a sweep removed.
type CleanupResponse struct {
	Removed int64 `json:"removed"`
}
