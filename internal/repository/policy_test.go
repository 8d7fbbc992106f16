package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackable-ai/trackable/internal/entity"
)

func testPolicy(merchantID uuid.UUID, rawText string) *entity.Policy {
	now := time.Now().UTC()
	return &entity.Policy{
		ID:          uuid.New(),
		MerchantID:  merchantID,
		PolicyType:  entity.PolicyReturn,
		CountryCode: "US",
		Name:        "Return Policy",
		RawText:     &rawText,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func addPolicyRow(t *testing.T, rows *sqlmock.Rows, p *entity.Policy) {
	t.Helper()

	returnJSON, err := encodeJSONPtr(p.ReturnPolicy)
	require.NoError(t, err)
	exchangeJSON, err := encodeJSONPtr(p.ExchangePolicy)
	require.NoError(t, err)

	rows.AddRow(
		p.ID, p.MerchantID, string(p.PolicyType), p.CountryCode, p.Name,
		deref(p.Description), deref(p.EffectiveDate), returnJSON, exchangeJSON,
		deref(p.SourceURL), deref(p.RawText), deref(p.ConfidenceScore),
		p.NeedsVerification, p.CreatedAt, p.UpdatedAt,
	)
}

func TestPolicyContentHashStable(t *testing.T) {
	assert.Equal(t, contentHash("30 day returns"), contentHash("30 day returns"))
	assert.NotEqual(t, contentHash("30 day returns"), contentHash("60 day returns"))
	assert.Len(t, contentHash(""), 64)
}

func TestPolicyUpsertSkipsWriteWhenContentUnchanged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	merchantID := uuid.New()
	existing := testPolicy(merchantID, "Returns accepted within 30 days.")

	found := sqlmock.NewRows(policyColumns)
	addPolicyRow(t, found, existing)
	mock.ExpectQuery(`SELECT (.+) FROM policies WHERE country_code =`).
		WithArgs("US", merchantID, "return").
		WillReturnRows(found)

	// Identical raw_text: no INSERT, no UPDATE, same row comes back.
	incoming := testPolicy(merchantID, "Returns accepted within 30 days.")

	repo := NewPolicyRepository(db, testLogger())
	p, err := repo.UpsertByMerchantAndType(context.Background(), incoming)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)
	assert.Equal(t, existing.UpdatedAt, p.UpdatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyUpsertWritesWhenContentChanges(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	merchantID := uuid.New()
	existing := testPolicy(merchantID, "Returns accepted within 30 days.")

	found := sqlmock.NewRows(policyColumns)
	addPolicyRow(t, found, existing)
	mock.ExpectQuery(`SELECT (.+) FROM policies WHERE country_code =`).
		WithArgs("US", merchantID, "return").
		WillReturnRows(found)

	incoming := testPolicy(merchantID, "Returns accepted within 60 days.")

	updated := testPolicy(merchantID, "Returns accepted within 60 days.")
	updated.ID = existing.ID
	updatedRows := sqlmock.NewRows(policyColumns)
	addPolicyRow(t, updatedRows, updated)
	mock.ExpectQuery(`INSERT INTO policies (.+) ON CONFLICT \(merchant_id, policy_type, country_code\) DO UPDATE SET`).
		WillReturnRows(updatedRows)

	repo := NewPolicyRepository(db, testLogger())
	p, err := repo.UpsertByMerchantAndType(context.Background(), incoming)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID, "content rewrite keeps the row identity")
	require.NotNil(t, p.RawText)
	assert.Equal(t, "Returns accepted within 60 days.", *p.RawText)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyUpsertInsertsWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	merchantID := uuid.New()
	incoming := testPolicy(merchantID, "Final sale, no returns.")

	mock.ExpectQuery(`SELECT (.+) FROM policies WHERE country_code =`).
		WithArgs("US", merchantID, "return").
		WillReturnRows(sqlmock.NewRows(policyColumns))

	inserted := sqlmock.NewRows(policyColumns)
	addPolicyRow(t, inserted, incoming)
	mock.ExpectQuery(`INSERT INTO policies (.+) RETURNING`).
		WillReturnRows(inserted)

	repo := NewPolicyRepository(db, testLogger())
	p, err := repo.UpsertByMerchantAndType(context.Background(), incoming)
	require.NoError(t, err)
	assert.Equal(t, entity.PolicyReturn, p.PolicyType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyGetByMerchantNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	merchantID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM policies WHERE country_code =`).
		WithArgs("US", merchantID, "exchange").
		WillReturnRows(sqlmock.NewRows(policyColumns))

	repo := NewPolicyRepository(db, testLogger())
	p, err := repo.GetByMerchant(context.Background(), merchantID, entity.PolicyExchange, "US")
	require.NoError(t, err)
	assert.Nil(t, p)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyListByMerchant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	merchantID := uuid.New()
	ret := testPolicy(merchantID, "Returns accepted within 30 days.")
	exch := testPolicy(merchantID, "Exchanges within 60 days.")
	exch.PolicyType = entity.PolicyExchange

	rows := sqlmock.NewRows(policyColumns)
	addPolicyRow(t, rows, ret)
	addPolicyRow(t, rows, exch)
	mock.ExpectQuery(`SELECT (.+) FROM policies WHERE merchant_id =`).
		WithArgs(merchantID).
		WillReturnRows(rows)

	repo := NewPolicyRepository(db, testLogger())
	list, err := repo.ListByMerchant(context.Background(), merchantID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.PolicyReturn, list[0].PolicyType)
	assert.Equal(t, entity.PolicyExchange, list[1].PolicyType)

	assert.NoError(t, mock.ExpectationsWereMet())
}
