package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/trackable-ai/trackable/internal/entity"
	"github.com/trackable-ai/trackable/internal/merchant"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var merchantColumns = []string{
	"id", "name", "domain", "aliases",
	"support_email", "support_url", "return_portal_url",
	"created_at", "updated_at",
}

type MerchantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Merchant, error)
	GetByDomain(ctx context.Context, domain string) (*entity.Merchant, error)
	// GetByNameOrDomain resolves a merchant by normalized domain first, then
	// by case-insensitive name, then by alias containment. Returns (nil, nil)
	// when nothing matches.
	GetByNameOrDomain(ctx context.Context, name, domain string) (*entity.Merchant, error)
	// UpsertByDomain inserts the merchant keyed by its normalized domain; on
	// conflict the existing row keeps its id and gets the incoming name,
	// aliases and contact fields. When normalize is true the name and alias
	// set are recomputed before writing. A merchant without a domain has no
	// dedup key and always inserts a new row.
	UpsertByDomain(ctx context.Context, m *entity.Merchant, normalize bool) (*entity.Merchant, error)
}

type merchantRepository struct {
	q      Querier
	logger *slog.Logger
}

func NewMerchantRepository(q Querier, logger *slog.Logger) MerchantRepository {
	return &merchantRepository{q: q, logger: logger}
}

func (r *merchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Merchant, error) {
	query, args, err := psql.Select(merchantColumns...).
		From("merchants").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, query, args...)
}

func (r *merchantRepository) GetByDomain(ctx context.Context, domain string) (*entity.Merchant, error) {
	normalized := merchant.NormalizeDomain(domain)
	if normalized == "" {
		return nil, nil
	}
	query, args, err := psql.Select(merchantColumns...).
		From("merchants").
		Where(sq.Eq{"domain": normalized}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, query, args...)
}

func (r *merchantRepository) GetByNameOrDomain(ctx context.Context, name, domain string) (*entity.Merchant, error) {
	if domain != "" {
		m, err := r.GetByDomain(ctx, domain)
		if err != nil || m != nil {
			return m, err
		}
	}

	if name == "" {
		return nil, nil
	}

	query, args, err := psql.Select(merchantColumns...).
		From("merchants").
		Where(sq.Expr("LOWER(name) = LOWER(?)", name)).
		ToSql()
	if err != nil {
		return nil, err
	}
	m, err := r.queryOne(ctx, query, args...)
	if err != nil || m != nil {
		return m, err
	}

	// Fall back to alias containment on the lowercased query.
	needle, err := json.Marshal([]string{strings.ToLower(strings.TrimSpace(name))})
	if err != nil {
		return nil, err
	}
	query, args, err = psql.Select(merchantColumns...).
		From("merchants").
		Where(sq.Expr("aliases @> ?::jsonb", string(needle))).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, query, args...)
}

func (r *merchantRepository) UpsertByDomain(ctx context.Context, m *entity.Merchant, normalize bool) (*entity.Merchant, error) {
	name := m.Name
	aliases := m.Aliases
	domain := ""
	if m.Domain != nil {
		domain = merchant.NormalizeDomain(*m.Domain)
	}
	if normalize {
		name = merchant.NormalizeMerchantName(m.Name, domain)
		aliases = merchant.GenerateMerchantAliases(name, domain)
	}

	aliasesJSON, err := encodeStrings(aliases)
	if err != nil {
		return nil, err
	}

	id := m.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()

	var domainVal any
	if domain != "" {
		domainVal = domain
	}

	builder := psql.Insert("merchants").
		Columns(merchantColumns...).
		Values(id, name, domainVal, aliasesJSON,
			m.SupportEmail, m.SupportURL, m.ReturnPortalURL,
			now, now)

	if domain != "" {
		builder = builder.Suffix(`ON CONFLICT (domain) DO UPDATE SET
			name = EXCLUDED.name,
			aliases = EXCLUDED.aliases,
			support_email = EXCLUDED.support_email,
			support_url = EXCLUDED.support_url,
			return_portal_url = EXCLUDED.return_portal_url,
			updated_at = EXCLUDED.updated_at
			RETURNING ` + strings.Join(merchantColumns, ", "))
	} else {
		builder = builder.Suffix("RETURNING " + strings.Join(merchantColumns, ", "))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	row := r.q.QueryRowContext(ctx, query, args...)
	result, err := scanMerchant(row)
	if err != nil {
		r.logger.Error("failed to upsert merchant", "name", name, "domain", domain, "error", err)
		return nil, err
	}
	return result, nil
}

func (r *merchantRepository) queryOne(ctx context.Context, query string, args ...any) (*entity.Merchant, error) {
	row := r.q.QueryRowContext(ctx, query, args...)
	m, err := scanMerchant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("merchant lookup failed", "error", err)
		return nil, err
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMerchant(row rowScanner) (*entity.Merchant, error) {
	var (
		m          entity.Merchant
		domain     sql.NullString
		aliasesRaw []byte
		email      sql.NullString
		supportURL sql.NullString
		portalURL  sql.NullString
	)
	err := row.Scan(&m.ID, &m.Name, &domain, &aliasesRaw,
		&email, &supportURL, &portalURL,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if domain.Valid {
		m.Domain = &domain.String
	}
	if email.Valid {
		m.SupportEmail = &email.String
	}
	if supportURL.Valid {
		m.SupportURL = &supportURL.String
	}
	if portalURL.Valid {
		m.ReturnPortalURL = &portalURL.String
	}
	m.Aliases, err = decodeStrings(aliasesRaw)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
