// Package ingest is the boundary where extraction results enter the system.
// Candidate payloads are validated, the merchant identity is resolved first,
// and the resulting merchant id feeds the order or policy upsert — all inside
// one transaction.
package ingest

import (
	"github.com/google/uuid"

	"github.com/trackable-ai/trackable/internal/entity"
)

// OrderCandidate is a confidence-scored order extraction produced upstream
// (email parser, screenshot agent). The merchant has no id yet; resolution
// assigns one.
type OrderCandidate struct {
	Merchant entity.Merchant `json:"merchant"`
	Order    entity.Order    `json:"order"`
}

// PolicyCandidate is an extracted merchant policy document. The merchant must
// already exist; policy refresh runs against known merchants only.
type PolicyCandidate struct {
	MerchantID uuid.UUID     `json:"merchant_id"`
	Policy     entity.Policy `json:"policy"`
}

// OrderResult reports what reconciliation did with a candidate.
type OrderResult struct {
	Merchant *entity.Merchant `json:"merchant"`
	Order    *entity.Order    `json:"order"`
	// IsNew is true when a fresh history row was created rather than an
	// existing row merged.
	IsNew bool `json:"is_new"`
}
