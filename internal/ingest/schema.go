package ingest

import (
	"encoding/json"
	"fmt"
)

// orderCandidateSchema is the shape upstream extractors must produce for an
// order candidate. Monetary values are amount+currency pairs; the merchant
// block rides along so identity resolution can run before the order upsert.
var orderCandidateSchema = map[string]any{
	"type":     "object",
	"required": []any{"merchant", "order"},
	"properties": map[string]any{
		"merchant": map[string]any{
			"type":     "object",
			"required": []any{"name"},
			"properties": map[string]any{
				"name":              map[string]any{"type": "string", "minLength": 1},
				"domain":            map[string]any{"type": []any{"string", "null"}},
				"support_email":     map[string]any{"type": []any{"string", "null"}},
				"support_url":       map[string]any{"type": []any{"string", "null"}},
				"return_portal_url": map[string]any{"type": []any{"string", "null"}},
			},
		},
		"order": map[string]any{
			"type":     "object",
			"required": []any{"user_id", "status", "source_type"},
			"properties": map[string]any{
				"user_id":      map[string]any{"type": "string", "format": "uuid"},
				"order_number": map[string]any{"type": []any{"string", "null"}},
				"status": map[string]any{
					"type": "string",
					"enum": []any{
						"unknown", "detected", "confirmed", "shipped", "in_transit",
						"delivered", "returned", "refunded", "cancelled",
					},
				},
				"source_type": map[string]any{
					"type": "string",
					"enum": []any{"email", "screenshot", "photo", "manual", "api"},
				},
				"confidence_score": map[string]any{
					"type":    []any{"number", "null"},
					"minimum": 0,
					"maximum": 1,
				},
				"items": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []any{"name"},
						"properties": map[string]any{
							"name":     map[string]any{"type": "string"},
							"quantity": map[string]any{"type": "integer", "minimum": 1},
							"price":    moneySchema,
						},
					},
				},
				"subtotal":      moneySchema,
				"tax":           moneySchema,
				"shipping_cost": moneySchema,
				"total":         moneySchema,
				"refund_amount": moneySchema,
			},
		},
	},
}

var moneySchema = map[string]any{
	"type":     []any{"object", "null"},
	"required": []any{"amount", "currency"},
	"properties": map[string]any{
		"amount":   map[string]any{"type": "number"},
		"currency": map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
	},
}

// ParseOrderCandidate validates raw extractor output and decodes it.
func ParseOrderCandidate(data []byte) (*OrderCandidate, error) {
	if err := ValidateJSONAgainstSchema(orderCandidateSchema, data); err != nil {
		return nil, fmt.Errorf("order candidate: %w", err)
	}
	var c OrderCandidate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode order candidate: %w", err)
	}
	return &c, nil
}
