package mapping

import (
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/models"
)

// ToModelIdempotencyKey converts a domain IdempotencyKey to its row model
func ToModelIdempotencyKey(d domain.IdempotencyKey) models.IdempotencyKey {
	return models.IdempotencyKey{
		Key:             d.Key,
		Operation:       d.Operation,
		RelatedEntityID: strPtr(d.RelatedEntityID),
		CreatedAt:       d.CreatedAt,
		ExpiresAt:       d.ExpiresAt,
		Used:            d.Used,
		UsedAt:          d.UsedAt,
		Successful:      d.Successful,
		ResultHash:      strPtr(d.ResultHash),
	}
}

// ToDomainIdempotencyKey converts a row model to a domain IdempotencyKey
func ToDomainIdempotencyKey(m models.IdempotencyKey) domain.IdempotencyKey {
	return domain.IdempotencyKey{
		Key:             m.Key,
		Operation:       m.Operation,
		RelatedEntityID: strVal(m.RelatedEntityID),
		CreatedAt:       m.CreatedAt,
		ExpiresAt:       m.ExpiresAt,
		Used:            m.Used,
		UsedAt:          m.UsedAt,
		Successful:      m.Successful,
		ResultHash:      strVal(m.ResultHash),
	}
}
