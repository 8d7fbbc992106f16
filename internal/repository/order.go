package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/trackable-ai/trackable/internal/entity"
	"github.com/trackable-ai/trackable/internal/orders"
)

var orderColumns = []string{
	"id", "user_id", "merchant_id", "order_number", "order_date", "status",
	"country_code", "items", "subtotal", "tax", "shipping_cost", "total",
	"return_window_start", "return_window_end", "return_window_days",
	"exchange_window_end", "is_monitored", "source_type", "source_id",
	"confidence_score", "needs_clarification", "clarification_questions",
	"order_url", "receipt_url", "refund_initiated", "refund_amount",
	"refund_completed_at", "notes", "created_at", "updated_at",
}

const uniqueViolation = "23505"

type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetByUniqueKey looks up the row for (user, merchant, order_number),
	// additionally filtered by status when non-nil. Returns (nil, nil) when
	// no row matches.
	GetByUniqueKey(ctx context.Context, userID, merchantID uuid.UUID, orderNumber string, status *entity.OrderStatus) (*entity.Order, error)
	// UpsertByOrderNumber reconciles an incoming candidate order against the
	// rows sharing its business key. A row with the same status is merged in
	// place; any other case inserts a fresh history row. The bool reports
	// whether a new row was created.
	UpsertByOrderNumber(ctx context.Context, o *entity.Order) (*entity.Order, bool, error)
	// GetOrderHistory returns every history row for a business key, ordered
	// by creation time.
	GetOrderHistory(ctx context.Context, userID, merchantID uuid.UUID, orderNumber string) ([]*entity.Order, error)
	// GetLatestOrder returns the highest-ranked status row for a business key.
	GetLatestOrder(ctx context.Context, userID, merchantID uuid.UUID, orderNumber string) (*entity.Order, error)
	// GetByOrderNumber returns the highest-ranked status row matching a user
	// and merchant order number, across merchants.
	GetByOrderNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*entity.Order, error)
	// ListByUser lists orders for a user. Without includeHistory the result
	// is deduplicated to the latest-status row per business key.
	ListByUser(ctx context.Context, userID uuid.UUID, status *entity.OrderStatus, limit, offset int, includeHistory bool) ([]*entity.Order, error)
	CountByUser(ctx context.Context, userID uuid.UUID, includeHistory bool) (int, error)
	// Search matches orders by order number, merchant name, or item name.
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*entity.Order, error)
	// GetOrdersWithExpiringReturnWindow returns monitored orders whose return
	// window closes within the given number of days.
	GetOrdersWithExpiringReturnWindow(ctx context.Context, days int, userID *uuid.UUID) ([]*entity.Order, error)
	// UpdateStatus moves an order forward in the lifecycle. Regressions are
	// ignored; the bool reports whether the row changed.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (bool, error)
	AddNote(ctx context.Context, id uuid.UUID, note string) (bool, error)
}

type orderRepository struct {
	q      Querier
	logger *slog.Logger
}

func NewOrderRepository(q Querier, logger *slog.Logger) OrderRepository {
	return &orderRepository{q: q, logger: logger}
}

// statusRankCase builds the CASE expression mapping a status column to its
// lifecycle rank, for ordering history rows in SQL.
func statusRankCase(col string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(col)
	progression := orders.StatusProgression()
	for i, s := range progression {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(progression))
	return b.String()
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, query, args...)
}

func (r *orderRepository) GetByUniqueKey(ctx context.Context, userID, merchantID uuid.UUID, orderNumber string, status *entity.OrderStatus) (*entity.Order, error) {
	builder := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{
			"user_id":      userID,
			"merchant_id":  merchantID,
			"order_number": orderNumber,
		})
	if status != nil {
		builder = builder.Where(sq.Eq{"status": *status})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, query, args...)
}

func (r *orderRepository) UpsertByOrderNumber(ctx context.Context, o *entity.Order) (*entity.Order, bool, error) {
	// Without a merchant order number there is no business key to reconcile
	// against; every extraction is its own row.
	if o.OrderNumber == nil {
		inserted, err := r.insert(ctx, o)
		return inserted, true, err
	}

	existing, err := r.GetByUniqueKey(ctx, o.UserID, o.MerchantID, *o.OrderNumber, &o.Status)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		inserted, err := r.insert(ctx, o)
		if err == nil {
			return inserted, true, nil
		}
		// Two workers can race past the existence check; the unique index on
		// (user_id, merchant_id, order_number, status) turns the loser's
		// insert into a conflict, which falls back to the merge path.
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
			return nil, false, err
		}
		r.logger.Warn("concurrent insert for order key, merging instead",
			"user_id", o.UserID, "merchant_id", o.MerchantID, "order_number", *o.OrderNumber)
		existing, err = r.GetByUniqueKey(ctx, o.UserID, o.MerchantID, *o.OrderNumber, &o.Status)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, pgErr
		}
	}

	patch := orders.Merge(existing, o)
	if patch.IsEmpty() {
		return existing, false, nil
	}
	merged, err := r.applyPatch(ctx, existing.ID, patch)
	if err != nil {
		return nil, false, err
	}
	return merged, false, nil
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, userID, merchantID uuid.UUID, orderNumber string) ([]*entity.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{
			"user_id":      userID,
			"merchant_id":  merchantID,
			"order_number": orderNumber,
		}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryMany(ctx, query, args...)
}

func (r *orderRepository) GetLatestOrder(ctx context.Context, userID, merchantID uuid.UUID, orderNumber string) (*entity.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{
			"user_id":      userID,
			"merchant_id":  merchantID,
			"order_number": orderNumber,
		}).
		OrderBy(statusRankCase("status") + " DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, query, args...)
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*entity.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"user_id": userID, "order_number": orderNumber}).
		OrderBy(statusRankCase("status") + " DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, query, args...)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *entity.OrderStatus, limit, offset int, includeHistory bool) ([]*entity.Order, error) {
	if includeHistory {
		builder := psql.Select(orderColumns...).
			From("orders").
			Where(sq.Eq{"user_id": userID})
		if status != nil {
			builder = builder.Where(sq.Eq{"status": *status})
		}
		query, args, err := builder.
			OrderBy("created_at DESC").
			Limit(uint64(limit)).
			Offset(uint64(offset)).
			ToSql()
		if err != nil {
			return nil, err
		}
		return r.queryMany(ctx, query, args...)
	}

	// One row per business key: the highest-ranked status wins.
	inner := psql.Select(orderColumns...).
		Options("DISTINCT ON (user_id, merchant_id, order_number)").
		From("orders").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("user_id", "merchant_id", "order_number", statusRankCase("status")+" DESC")

	if status == nil {
		query, args, err := inner.
			Limit(uint64(limit)).
			Offset(uint64(offset)).
			ToSql()
		if err != nil {
			return nil, err
		}
		return r.queryMany(ctx, query, args...)
	}

	// Filtering by status must happen after the DISTINCT ON dedup, otherwise
	// a lower-ranked row would resurface for keys whose latest status differs.
	innerSQL, innerArgs, err := inner.ToSql()
	if err != nil {
		return nil, err
	}
	wrapped := fmt.Sprintf("SELECT %s FROM (%s) latest WHERE latest.status = $%d LIMIT %d OFFSET %d",
		strings.Join(orderColumns, ", "), innerSQL, len(innerArgs)+1, limit, offset)
	return r.queryMany(ctx, wrapped, append(innerArgs, string(*status))...)
}

func (r *orderRepository) CountByUser(ctx context.Context, userID uuid.UUID, includeHistory bool) (int, error) {
	var query string
	var args []any
	var err error
	if includeHistory {
		query, args, err = psql.Select("COUNT(*)").
			From("orders").
			Where(sq.Eq{"user_id": userID}).
			ToSql()
	} else {
		query, args, err = psql.Select("COUNT(DISTINCT (merchant_id, order_number))").
			From("orders").
			Where(sq.Eq{"user_id": userID}).
			ToSql()
	}
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		r.logger.Error("failed to count orders", "user_id", userID, "error", err)
		return 0, err
	}
	return n, nil
}

func (r *orderRepository) Search(ctx context.Context, userID uuid.UUID, search string, limit int) ([]*entity.Order, error) {
	pattern := "%" + search + "%"
	cols := make([]string, len(orderColumns))
	for i, c := range orderColumns {
		cols[i] = "orders." + c
	}
	query, args, err := psql.Select(cols...).
		From("orders").
		Join("merchants ON orders.merchant_id = merchants.id").
		Where(sq.Eq{"orders.user_id": userID}).
		Where(sq.Or{
			sq.Expr("orders.order_number ILIKE ?", pattern),
			sq.Expr("merchants.name ILIKE ?", pattern),
			sq.Expr("EXISTS (SELECT 1 FROM jsonb_array_elements(orders.items) elem WHERE elem->>'name' ILIKE ?)", pattern),
		}).
		OrderBy("orders.created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryMany(ctx, query, args...)
}

func (r *orderRepository) GetOrdersWithExpiringReturnWindow(ctx context.Context, days int, userID *uuid.UUID) ([]*entity.Order, error) {
	now := time.Now().UTC()
	threshold := now.AddDate(0, 0, days)

	builder := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"is_monitored": true}).
		Where(sq.NotEq{"return_window_end": nil}).
		Where(sq.LtOrEq{"return_window_end": threshold}).
		Where(sq.Gt{"return_window_end": now})
	if userID != nil {
		builder = builder.Where(sq.Eq{"user_id": *userID})
	}
	query, args, err := builder.OrderBy("return_window_end ASC").ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryMany(ctx, query, args...)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (bool, error) {
	// The WHERE clause enforces forward-only transitions in the store itself.
	query, args, err := psql.Update("orders").
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr(statusRankCase("status")+" < ?", orders.StatusRank(status))).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to update order status", "order_id", id, "status", status, "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *orderRepository) AddNote(ctx context.Context, id uuid.UUID, note string) (bool, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	notesJSON, err := encodeStrings(append(existing.Notes, note))
	if err != nil {
		return false, err
	}
	query, args, err := psql.Update("orders").
		Set("notes", notesJSON).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *orderRepository) insert(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	id := o.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()

	itemsJSON, err := encodeItems(o.Items)
	if err != nil {
		return nil, err
	}
	subtotalJSON, err := encodeJSONPtr(o.Subtotal)
	if err != nil {
		return nil, err
	}
	taxJSON, err := encodeJSONPtr(o.Tax)
	if err != nil {
		return nil, err
	}
	shippingJSON, err := encodeJSONPtr(o.ShippingCost)
	if err != nil {
		return nil, err
	}
	totalJSON, err := encodeJSONPtr(o.Total)
	if err != nil {
		return nil, err
	}
	refundJSON, err := encodeJSONPtr(o.RefundAmount)
	if err != nil {
		return nil, err
	}
	questionsJSON, err := encodeStrings(o.ClarificationQuestions)
	if err != nil {
		return nil, err
	}
	notesJSON, err := encodeStrings(o.Notes)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Insert("orders").
		Columns(orderColumns...).
		Values(
			id, o.UserID, o.MerchantID, o.OrderNumber, o.OrderDate, string(o.Status),
			o.CountryCode, itemsJSON, subtotalJSON, taxJSON, shippingJSON, totalJSON,
			o.ReturnWindowStart, o.ReturnWindowEnd, o.ReturnWindowDays,
			o.ExchangeWindowEnd, o.IsMonitored, string(o.SourceType), o.SourceID,
			o.ConfidenceScore, o.NeedsClarification, questionsJSON,
			o.OrderURL, o.ReceiptURL, o.RefundInitiated, refundJSON,
			o.RefundCompletedAt, notesJSON, now, now,
		).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.q.QueryRowContext(ctx, query, args...)
	inserted, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func (r *orderRepository) applyPatch(ctx context.Context, id uuid.UUID, p orders.Patch) (*entity.Order, error) {
	builder := psql.Update("orders").Set("updated_at", p.UpdatedAt)

	if p.OrderDate != nil {
		builder = builder.Set("order_date", *p.OrderDate)
	}
	if p.CountryCode != nil {
		builder = builder.Set("country_code", *p.CountryCode)
	}
	if p.Items != nil {
		itemsJSON, err := encodeItems(p.Items)
		if err != nil {
			return nil, err
		}
		builder = builder.Set("items", itemsJSON)
	}
	moneyCols := []struct {
		col string
		val *entity.Money
	}{
		{"subtotal", p.Subtotal},
		{"tax", p.Tax},
		{"shipping_cost", p.ShippingCost},
		{"total", p.Total},
		{"refund_amount", p.RefundAmount},
	}
	for _, mc := range moneyCols {
		if mc.val == nil {
			continue
		}
		v, err := encodeJSONPtr(mc.val)
		if err != nil {
			return nil, err
		}
		builder = builder.Set(mc.col, v)
	}
	if p.ReturnWindowStart != nil {
		builder = builder.Set("return_window_start", *p.ReturnWindowStart)
	}
	if p.ReturnWindowEnd != nil {
		builder = builder.Set("return_window_end", *p.ReturnWindowEnd)
	}
	if p.ReturnWindowDays != nil {
		builder = builder.Set("return_window_days", *p.ReturnWindowDays)
	}
	if p.ExchangeWindowEnd != nil {
		builder = builder.Set("exchange_window_end", *p.ExchangeWindowEnd)
	}
	if p.ConfidenceScore != nil {
		builder = builder.Set("confidence_score", *p.ConfidenceScore)
	}
	if p.NeedsClarification != nil {
		builder = builder.Set("needs_clarification", *p.NeedsClarification)
	}
	if p.ClarificationQuestions != nil {
		v, err := encodeStrings(p.ClarificationQuestions)
		if err != nil {
			return nil, err
		}
		builder = builder.Set("clarification_questions", v)
	}
	if p.OrderURL != nil {
		builder = builder.Set("order_url", *p.OrderURL)
	}
	if p.ReceiptURL != nil {
		builder = builder.Set("receipt_url", *p.ReceiptURL)
	}
	if p.RefundInitiated != nil {
		builder = builder.Set("refund_initiated", *p.RefundInitiated)
	}
	if p.RefundCompletedAt != nil {
		builder = builder.Set("refund_completed_at", *p.RefundCompletedAt)
	}
	if p.Notes != nil {
		v, err := encodeStrings(p.Notes)
		if err != nil {
			return nil, err
		}
		builder = builder.Set("notes", v)
	}

	query, args, err := builder.
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.q.QueryRowContext(ctx, query, args...)
	updated, err := scanOrder(row)
	if err != nil {
		r.logger.Error("failed to apply order patch", "order_id", id, "error", err)
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) queryOne(ctx context.Context, query string, args ...any) (*entity.Order, error) {
	row := r.q.QueryRowContext(ctx, query, args...)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("order lookup failed", "error", err)
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) queryMany(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("order query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var result []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var (
		o             entity.Order
		orderNumber   sql.NullString
		orderDate     sql.NullTime
		status        string
		countryCode   sql.NullString
		itemsRaw      []byte
		subtotalRaw   []byte
		taxRaw        []byte
		shippingRaw   []byte
		totalRaw      []byte
		rwStart       sql.NullTime
		rwEnd         sql.NullTime
		rwDays        sql.NullInt64
		exchangeEnd   sql.NullTime
		sourceType    string
		sourceID      sql.NullString
		confidence    sql.NullFloat64
		questionsRaw  []byte
		orderURL      sql.NullString
		receiptURL    sql.NullString
		refundRaw     []byte
		refundDoneAt  sql.NullTime
		notesRaw      []byte
	)

	err := row.Scan(
		&o.ID, &o.UserID, &o.MerchantID, &orderNumber, &orderDate, &status,
		&countryCode, &itemsRaw, &subtotalRaw, &taxRaw, &shippingRaw, &totalRaw,
		&rwStart, &rwEnd, &rwDays, &exchangeEnd, &o.IsMonitored, &sourceType,
		&sourceID, &confidence, &o.NeedsClarification, &questionsRaw,
		&orderURL, &receiptURL, &o.RefundInitiated, &refundRaw,
		&refundDoneAt, &notesRaw, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = entity.OrderStatus(status)
	o.SourceType = entity.SourceType(sourceType)
	if orderNumber.Valid {
		o.OrderNumber = &orderNumber.String
	}
	if orderDate.Valid {
		o.OrderDate = &orderDate.Time
	}
	if countryCode.Valid {
		o.CountryCode = &countryCode.String
	}
	if rwStart.Valid {
		o.ReturnWindowStart = &rwStart.Time
	}
	if rwEnd.Valid {
		o.ReturnWindowEnd = &rwEnd.Time
	}
	if rwDays.Valid {
		d := int(rwDays.Int64)
		o.ReturnWindowDays = &d
	}
	if exchangeEnd.Valid {
		o.ExchangeWindowEnd = &exchangeEnd.Time
	}
	if sourceID.Valid {
		o.SourceID = &sourceID.String
	}
	if confidence.Valid {
		o.ConfidenceScore = &confidence.Float64
	}
	if orderURL.Valid {
		o.OrderURL = &orderURL.String
	}
	if receiptURL.Valid {
		o.ReceiptURL = &receiptURL.String
	}
	if refundDoneAt.Valid {
		o.RefundCompletedAt = &refundDoneAt.Time
	}

	if o.Items, err = decodeItems(itemsRaw); err != nil {
		return nil, err
	}
	if o.Subtotal, err = decodeMoney(subtotalRaw); err != nil {
		return nil, err
	}
	if o.Tax, err = decodeMoney(taxRaw); err != nil {
		return nil, err
	}
	if o.ShippingCost, err = decodeMoney(shippingRaw); err != nil {
		return nil, err
	}
	if o.Total, err = decodeMoney(totalRaw); err != nil {
		return nil, err
	}
	if o.RefundAmount, err = decodeMoney(refundRaw); err != nil {
		return nil, err
	}
	if o.ClarificationQuestions, err = decodeStrings(questionsRaw); err != nil {
		return nil, err
	}
	if o.Notes, err = decodeStrings(notesRaw); err != nil {
		return nil, err
	}

	return &o, nil
}
