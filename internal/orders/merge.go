// Package orders holds the reconciliation rules for order rows: the status
// lifecycle ranking and the field-level merge applied when two extraction
// events describe the same (user, merchant, order_number, status) row.
//
// Merge only ever happens between rows with the same status; status itself is
// part of the unique key and is never changed here.
package orders

import (
	"time"

	"github.com/trackable-ai/trackable/internal/entity"
)

// Patch is the partial update produced by merging an incoming order into an
// existing row. A nil pointer (or nil slice) means "leave the column alone".
type Patch struct {
	OrderDate   *time.Time
	CountryCode *string

	Items []entity.Item

	Subtotal     *entity.Money
	Tax          *entity.Money
	ShippingCost *entity.Money
	Total        *entity.Money

	ReturnWindowStart *time.Time
	ReturnWindowEnd   *time.Time
	ReturnWindowDays  *int
	ExchangeWindowEnd *time.Time

	ConfidenceScore *float64

	NeedsClarification     *bool
	ClarificationQuestions []string

	OrderURL   *string
	ReceiptURL *string

	RefundInitiated   *bool
	RefundAmount      *entity.Money
	RefundCompletedAt *time.Time

	Notes []string

	UpdatedAt time.Time
}

// IsEmpty reports whether the patch carries nothing beyond the refreshed
// updated_at timestamp.
func (p Patch) IsEmpty() bool {
	return p.OrderDate == nil &&
		p.CountryCode == nil &&
		p.Items == nil &&
		p.Subtotal == nil &&
		p.Tax == nil &&
		p.ShippingCost == nil &&
		p.Total == nil &&
		p.ReturnWindowStart == nil &&
		p.ReturnWindowEnd == nil &&
		p.ReturnWindowDays == nil &&
		p.ExchangeWindowEnd == nil &&
		p.ConfidenceScore == nil &&
		p.NeedsClarification == nil &&
		p.ClarificationQuestions == nil &&
		p.OrderURL == nil &&
		p.ReceiptURL == nil &&
		p.RefundInitiated == nil &&
		p.RefundAmount == nil &&
		p.RefundCompletedAt == nil &&
		p.Notes == nil
}

// Merge reconciles an incoming extraction against the existing row and
// returns the set of columns to write.
//
// Rules:
//   - order_date, country_code, return/exchange windows: first-write-wins.
//   - items: replaced wholesale when the incoming list is non-empty.
//   - money fields, URLs, refund info: last non-null write wins.
//   - confidence_score: monotonically non-decreasing.
//   - notes, clarification_questions: union, existing entries first.
func Merge(existing, incoming *entity.Order) Patch {
	p := Patch{UpdatedAt: time.Now().UTC()}

	if existing.OrderDate == nil && incoming.OrderDate != nil {
		p.OrderDate = incoming.OrderDate
	}
	if existing.CountryCode == nil && incoming.CountryCode != nil {
		p.CountryCode = incoming.CountryCode
	}

	if len(incoming.Items) > 0 {
		p.Items = incoming.Items
	}

	if incoming.Subtotal != nil {
		p.Subtotal = incoming.Subtotal
	}
	if incoming.Tax != nil {
		p.Tax = incoming.Tax
	}
	if incoming.ShippingCost != nil {
		p.ShippingCost = incoming.ShippingCost
	}
	if incoming.Total != nil {
		p.Total = incoming.Total
	}

	if existing.ReturnWindowStart == nil && incoming.ReturnWindowStart != nil {
		p.ReturnWindowStart = incoming.ReturnWindowStart
	}
	if existing.ReturnWindowEnd == nil && incoming.ReturnWindowEnd != nil {
		p.ReturnWindowEnd = incoming.ReturnWindowEnd
	}
	if existing.ReturnWindowDays == nil && incoming.ReturnWindowDays != nil {
		p.ReturnWindowDays = incoming.ReturnWindowDays
	}
	if existing.ExchangeWindowEnd == nil && incoming.ExchangeWindowEnd != nil {
		p.ExchangeWindowEnd = incoming.ExchangeWindowEnd
	}

	if incoming.ConfidenceScore != nil {
		if existing.ConfidenceScore == nil || *incoming.ConfidenceScore > *existing.ConfidenceScore {
			p.ConfidenceScore = incoming.ConfidenceScore
		}
	}

	if incoming.NeedsClarification {
		t := true
		p.NeedsClarification = &t
		if merged, changed := unionStrings(existing.ClarificationQuestions, incoming.ClarificationQuestions); changed {
			p.ClarificationQuestions = merged
		}
	}

	if incoming.OrderURL != nil {
		p.OrderURL = incoming.OrderURL
	}
	if incoming.ReceiptURL != nil {
		p.ReceiptURL = incoming.ReceiptURL
	}

	if incoming.RefundInitiated && !existing.RefundInitiated {
		t := true
		p.RefundInitiated = &t
	}
	if incoming.RefundAmount != nil {
		p.RefundAmount = incoming.RefundAmount
	}
	if incoming.RefundCompletedAt != nil {
		p.RefundCompletedAt = incoming.RefundCompletedAt
	}

	if len(incoming.Notes) > 0 {
		if merged, changed := unionStrings(existing.Notes, incoming.Notes); changed {
			p.Notes = merged
		}
	}

	return p
}

// Apply copies the patch onto an order value, mirroring what the storage
// layer writes.
func Apply(o *entity.Order, p Patch) {
	if p.OrderDate != nil {
		o.OrderDate = p.OrderDate
	}
	if p.CountryCode != nil {
		o.CountryCode = p.CountryCode
	}
	if p.Items != nil {
		o.Items = p.Items
	}
	if p.Subtotal != nil {
		o.Subtotal = p.Subtotal
	}
	if p.Tax != nil {
		o.Tax = p.Tax
	}
	if p.ShippingCost != nil {
		o.ShippingCost = p.ShippingCost
	}
	if p.Total != nil {
		o.Total = p.Total
	}
	if p.ReturnWindowStart != nil {
		o.ReturnWindowStart = p.ReturnWindowStart
	}
	if p.ReturnWindowEnd != nil {
		o.ReturnWindowEnd = p.ReturnWindowEnd
	}
	if p.ReturnWindowDays != nil {
		o.ReturnWindowDays = p.ReturnWindowDays
	}
	if p.ExchangeWindowEnd != nil {
		o.ExchangeWindowEnd = p.ExchangeWindowEnd
	}
	if p.ConfidenceScore != nil {
		o.ConfidenceScore = p.ConfidenceScore
	}
	if p.NeedsClarification != nil {
		o.NeedsClarification = *p.NeedsClarification
	}
	if p.ClarificationQuestions != nil {
		o.ClarificationQuestions = p.ClarificationQuestions
	}
	if p.OrderURL != nil {
		o.OrderURL = p.OrderURL
	}
	if p.ReceiptURL != nil {
		o.ReceiptURL = p.ReceiptURL
	}
	if p.RefundInitiated != nil {
		o.RefundInitiated = *p.RefundInitiated
	}
	if p.RefundAmount != nil {
		o.RefundAmount = p.RefundAmount
	}
	if p.RefundCompletedAt != nil {
		o.RefundCompletedAt = p.RefundCompletedAt
	}
	if p.Notes != nil {
		o.Notes = p.Notes
	}
	o.UpdatedAt = p.UpdatedAt
}

// unionStrings appends entries of incoming that existing does not already
// contain, preserving order. The second return value reports whether the
// result differs from existing.
func unionStrings(existing, incoming []string) ([]string, bool) {
	merged := make([]string, len(existing))
	copy(merged, existing)
	changed := false
	for _, s := range incoming {
		if !containsString(merged, s) {
			merged = append(merged, s)
			changed = true
		}
	}
	return merged, changed
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
