package ingest

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/trackable-ai/trackable/internal/common"
	"github.com/trackable-ai/trackable/internal/entity"
	"github.com/trackable-ai/trackable/internal/repository"
)

// Service reconciles candidate extractions into merchant, order and policy
// rows. Each public method owns exactly one database transaction.
type Service struct {
	db            *sql.DB
	logger        *slog.Logger
	minConfidence float64
}

func NewService(db *sql.DB, cfg common.IngestConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, logger: logger, minConfidence: cfg.MinConfidence}
}

// ReconcileOrder resolves the candidate's merchant identity, then folds the
// order into the rows sharing its business key.
func (s *Service) ReconcileOrder(ctx context.Context, cand *OrderCandidate) (*OrderResult, error) {
	if err := s.validateOrderCandidate(cand); err != nil {
		return nil, err
	}

	var result OrderResult
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		merchants := repository.NewMerchantRepository(tx, s.logger)
		orders := repository.NewOrderRepository(tx, s.logger)

		m, err := merchants.UpsertByDomain(ctx, &cand.Merchant, true)
		if err != nil {
			return err
		}

		order := cand.Order
		order.MerchantID = m.ID

		o, isNew, err := orders.UpsertByOrderNumber(ctx, &order)
		if err != nil {
			return err
		}

		result = OrderResult{Merchant: m, Order: o, IsNew: isNew}
		return nil
	})
	if err != nil {
		s.logger.Error("order reconciliation failed",
			"user_id", cand.Order.UserID, "merchant", cand.Merchant.Name, "error", err)
		return nil, err
	}

	s.logger.Info("order reconciled",
		"user_id", cand.Order.UserID,
		"merchant_id", result.Merchant.ID,
		"status", result.Order.Status,
		"is_new", result.IsNew)
	return &result, nil
}

// ReconcilePolicy upserts an extracted policy document for a known merchant.
// Re-processing an unchanged policy page is a no-op.
func (s *Service) ReconcilePolicy(ctx context.Context, cand *PolicyCandidate) (*entity.Policy, error) {
	if err := s.validatePolicyCandidate(cand); err != nil {
		return nil, err
	}

	var result *entity.Policy
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		policies := repository.NewPolicyRepository(tx, s.logger)

		policy := cand.Policy
		policy.MerchantID = cand.MerchantID

		p, err := policies.UpsertByMerchantAndType(ctx, &policy)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		s.logger.Error("policy reconciliation failed",
			"merchant_id", cand.MerchantID, "policy_type", cand.Policy.PolicyType, "error", err)
		return nil, err
	}
	return result, nil
}

func (s *Service) validateOrderCandidate(cand *OrderCandidate) error {
	v := common.NewValidator()
	v.Field("merchant.name", cand.Merchant.Name, common.Required)
	v.Field("order.user_id", cand.Order.UserID.String(), common.UUID)
	v.Field("order.country_code", cand.Order.CountryCode, common.CountryCode)
	v.Field("order.confidence_score", cand.Order.ConfidenceScore, common.Confidence)
	if cand.Order.UserID == uuid.Nil {
		v.Field("order.user_id", nil, common.Required)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return err
	}

	// Thresholding is an upstream responsibility; this is a guard against a
	// misconfigured producer, not a scoring decision.
	if cand.Order.ConfidenceScore != nil && *cand.Order.ConfidenceScore < s.minConfidence {
		return common.InvalidArgumentErrorf("confidence score %.2f below ingest threshold %.2f",
			*cand.Order.ConfidenceScore, s.minConfidence)
	}
	return nil
}

func (s *Service) validatePolicyCandidate(cand *PolicyCandidate) error {
	v := common.NewValidator()
	v.Field("merchant_id", cand.MerchantID.String(), common.UUID)
	v.Field("policy.country_code", cand.Policy.CountryCode, common.CountryCode)
	v.Field("policy.confidence_score", cand.Policy.ConfidenceScore, common.Confidence)
	if cand.MerchantID == uuid.Nil {
		v.Field("merchant_id", nil, common.Required)
	}
	if string(cand.Policy.PolicyType) == "" {
		v.Field("policy.policy_type", nil, common.Required)
	}
	return common.ValidateAndReturnError(v)
}
