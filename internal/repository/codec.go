package repository

import (
	"encoding/json"
	"fmt"

	"github.com/trackable-ai/trackable/internal/entity"
)

// The storage layer keeps nested sub-objects (items, money amounts, policy
// bodies, string lists) as JSONB documents attached to their owning row.
// This codec is the only place that encoding lives; everything above it
// operates on entity structs.

// encodeJSON marshals v for a NOT NULL jsonb column.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode jsonb: %w", err)
	}
	return string(b), nil
}

// encodeJSONPtr marshals v for a nullable jsonb column; a nil pointer maps
// to SQL NULL.
func encodeJSONPtr[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	return string(b), nil
}

// encodeStrings marshals a string list, defaulting nil to an empty array.
func encodeStrings(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	return encodeJSON(list)
}

// encodeItems marshals an item list, defaulting nil to an empty array.
func encodeItems(items []entity.Item) (string, error) {
	if items == nil {
		items = []entity.Item{}
	}
	return encodeJSON(items)
}

func decodeMoney(raw []byte) (*entity.Money, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m entity.Money
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode money: %w", err)
	}
	return &m, nil
}

func decodeItems(raw []byte) ([]entity.Item, error) {
	if len(raw) == 0 {
		return []entity.Item{}, nil
	}
	var items []entity.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if items == nil {
		items = []entity.Item{}
	}
	return items, nil
}

func decodeStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode string list: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func decodeReturnPolicy(raw []byte) (*entity.ReturnPolicy, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var p entity.ReturnPolicy
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode return policy: %w", err)
	}
	return &p, nil
}

func decodeExchangePolicy(raw []byte) (*entity.ExchangePolicy, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var p entity.ExchangePolicy
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode exchange policy: %w", err)
	}
	return &p, nil
}
