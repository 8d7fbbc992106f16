package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/trackable-ai/trackable/internal/entity"
)

var policyColumns = []string{
	"id", "merchant_id", "policy_type", "country_code", "name", "description",
	"effective_date", "return_policy", "exchange_policy", "source_url",
	"raw_text", "confidence_score", "needs_verification",
	"created_at", "updated_at",
}

type PolicyRepository interface {
	GetByMerchant(ctx context.Context, merchantID uuid.UUID, policyType entity.PolicyType, countryCode string) (*entity.Policy, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entity.Policy, error)
	// UpsertByMerchantAndType upserts keyed on (merchant_id, policy_type,
	// country_code). When the stored raw_text hashes identically to the
	// incoming one, the existing row is returned untouched so that periodic
	// re-processing of an unchanged policy page is a true no-op.
	UpsertByMerchantAndType(ctx context.Context, p *entity.Policy) (*entity.Policy, error)
}

type policyRepository struct {
	q      Querier
	logger *slog.Logger
}

func NewPolicyRepository(q Querier, logger *slog.Logger) PolicyRepository {
	return &policyRepository{q: q, logger: logger}
}

// contentHash is the content identity of a policy document.
func contentHash(rawText string) string {
	sum := sha256.Sum256([]byte(rawText))
	return hex.EncodeToString(sum[:])
}

func (r *policyRepository) GetByMerchant(ctx context.Context, merchantID uuid.UUID, policyType entity.PolicyType, countryCode string) (*entity.Policy, error) {
	query, args, err := psql.Select(policyColumns...).
		From("policies").
		Where(sq.Eq{
			"merchant_id":  merchantID,
			"policy_type":  string(policyType),
			"country_code": countryCode,
		}).
		ToSql()
	if err != nil {
		return nil, err
	}
	row := r.q.QueryRowContext(ctx, query, args...)
	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("policy lookup failed", "merchant_id", merchantID, "error", err)
		return nil, err
	}
	return p, nil
}

func (r *policyRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entity.Policy, error) {
	query, args, err := psql.Select(policyColumns...).
		From("policies").
		Where(sq.Eq{"merchant_id": merchantID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("policy query failed", "merchant_id", merchantID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var result []*entity.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *policyRepository) UpsertByMerchantAndType(ctx context.Context, p *entity.Policy) (*entity.Policy, error) {
	existing, err := r.GetByMerchant(ctx, p.MerchantID, p.PolicyType, p.CountryCode)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.RawText != nil && p.RawText != nil &&
		contentHash(*existing.RawText) == contentHash(*p.RawText) {
		r.logger.Debug("policy content unchanged, skipping write",
			"merchant_id", p.MerchantID, "policy_type", p.PolicyType)
		return existing, nil
	}

	returnJSON, err := encodeJSONPtr(p.ReturnPolicy)
	if err != nil {
		return nil, err
	}
	exchangeJSON, err := encodeJSONPtr(p.ExchangePolicy)
	if err != nil {
		return nil, err
	}

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()

	query, args, err := psql.Insert("policies").
		Columns(policyColumns...).
		Values(
			id, p.MerchantID, string(p.PolicyType), p.CountryCode, p.Name,
			p.Description, p.EffectiveDate, returnJSON, exchangeJSON,
			p.SourceURL, p.RawText, p.ConfidenceScore, p.NeedsVerification,
			now, now,
		).
		Suffix(`ON CONFLICT (merchant_id, policy_type, country_code) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			effective_date = EXCLUDED.effective_date,
			return_policy = EXCLUDED.return_policy,
			exchange_policy = EXCLUDED.exchange_policy,
			source_url = EXCLUDED.source_url,
			raw_text = EXCLUDED.raw_text,
			confidence_score = EXCLUDED.confidence_score,
			needs_verification = EXCLUDED.needs_verification,
			updated_at = EXCLUDED.updated_at
			RETURNING ` + strings.Join(policyColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.q.QueryRowContext(ctx, query, args...)
	result, err := scanPolicy(row)
	if err != nil {
		r.logger.Error("failed to upsert policy",
			"merchant_id", p.MerchantID, "policy_type", p.PolicyType, "error", err)
		return nil, err
	}
	return result, nil
}

func scanPolicy(row rowScanner) (*entity.Policy, error) {
	var (
		p             entity.Policy
		policyType    string
		description   sql.NullString
		effectiveDate sql.NullTime
		returnRaw     []byte
		exchangeRaw   []byte
		sourceURL     sql.NullString
		rawText       sql.NullString
		confidence    sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.MerchantID, &policyType, &p.CountryCode, &p.Name,
		&description, &effectiveDate, &returnRaw, &exchangeRaw, &sourceURL,
		&rawText, &confidence, &p.NeedsVerification, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.PolicyType = entity.PolicyType(policyType)
	if description.Valid {
		p.Description = &description.String
	}
	if effectiveDate.Valid {
		p.EffectiveDate = &effectiveDate.Time
	}
	if sourceURL.Valid {
		p.SourceURL = &sourceURL.String
	}
	if rawText.Valid {
		p.RawText = &rawText.String
	}
	if confidence.Valid {
		p.ConfidenceScore = &confidence.Float64
	}
	if p.ReturnPolicy, err = decodeReturnPolicy(returnRaw); err != nil {
		return nil, err
	}
	if p.ExchangePolicy, err = decodeExchangePolicy(exchangeRaw); err != nil {
		return nil, err
	}
	return &p, nil
}
