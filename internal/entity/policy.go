package entity

import (
	"time"

	"github.com/google/uuid"
)

// PolicyType distinguishes policy documents for a merchant.
type PolicyType string

const (
	PolicyReturn     PolicyType = "return"
	PolicyExchange   PolicyType = "exchange"
	PolicyWarranty   PolicyType = "warranty"
	PolicyPriceMatch PolicyType = "price_match"
	PolicyGeneral    PolicyType = "general"
)

// RefundMethod is how a merchant pays refunds out.
type RefundMethod string

const (
	RefundOriginalPayment RefundMethod = "original_payment"
	RefundStoreCredit     RefundMethod = "store_credit"
	RefundGiftCard        RefundMethod = "gift_card"
	RefundEither          RefundMethod = "either"
	RefundUnknown         RefundMethod = "unknown"
)

// ReturnPolicy is the structured interpretation of a merchant's return terms.
type ReturnPolicy struct {
	Allowed            bool         `json:"allowed"`
	WindowDays         *int         `json:"window_days,omitempty"`
	Conditions         []string     `json:"conditions,omitempty"`
	RefundMethod       RefundMethod `json:"refund_method"`
	RestockingFee      *float64     `json:"restocking_fee,omitempty"`
	FreeReturnLabel    bool         `json:"free_return_label"`
	ExcludedCategories []string     `json:"excluded_categories,omitempty"`
}

// ExchangePolicy is the structured interpretation of a merchant's exchange terms.
type ExchangePolicy struct {
	Allowed            bool     `json:"allowed"`
	WindowDays         *int     `json:"window_days,omitempty"`
	ExchangeTypes      []string `json:"exchange_types,omitempty"`
	Conditions         []string `json:"conditions,omitempty"`
	FreeExchangeLabel  bool     `json:"free_exchange_label"`
	ExcludedCategories []string `json:"excluded_categories,omitempty"`
}

// Policy is one extracted policy document, unique per
// (merchant_id, policy_type, country_code). Content identity is the
// SHA-256 digest of RawText.
type Policy struct {
	ID          uuid.UUID  `json:"id"`
	MerchantID  uuid.UUID  `json:"merchant_id"`
	PolicyType  PolicyType `json:"policy_type"`
	CountryCode string     `json:"country_code"`

	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`

	ReturnPolicy   *ReturnPolicy   `json:"return_policy,omitempty"`
	ExchangePolicy *ExchangePolicy `json:"exchange_policy,omitempty"`

	SourceURL *string `json:"source_url,omitempty"`
	RawText   *string `json:"raw_text,omitempty"`

	ConfidenceScore   *float64 `json:"confidence_score,omitempty"`
	NeedsVerification bool     `json:"needs_verification"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
