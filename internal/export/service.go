package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/trackable-ai/trackable/internal/entity"
	"github.com/trackable-ai/trackable/internal/repository"
)

// Service is a tiny façade over the order repository that produces XLSX
// bytes for exports.
type Service struct {
	ordersRepo    repository.OrderRepository
	merchantsRepo repository.MerchantRepository
	logger        *slog.Logger
}

func NewService(ordersRepo repository.OrderRepository, merchantsRepo repository.MerchantRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ordersRepo: ordersRepo, merchantsRepo: merchantsRepo, logger: logger}
}

// ExportOrdersXLSX returns an XLSX workbook (as bytes) with one row per
// order for the given user, latest status per business key.
func (s *Service) ExportOrdersXLSX(ctx context.Context, userID uuid.UUID, limit int) ([]byte, error) {
	start := time.Now()

	if limit <= 0 {
		limit = 1000
	}
	ords, err := s.ordersRepo.ListByUser(ctx, userID, nil, limit, 0, false)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Orders"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Order Date",
		"Merchant",
		"Order Number",
		"Status",
		"Items",
		"Total",
		"Return Window Ends",
		"Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	// Merchant names are resolved once per id; exports typically cover a
	// handful of merchants.
	merchantNames := map[uuid.UUID]string{}

	row := 2
	for _, o := range ords {
		name, ok := merchantNames[o.MerchantID]
		if !ok {
			m, err := s.merchantsRepo.GetByID(ctx, o.MerchantID)
			if err == nil && m != nil {
				name = m.Name
			}
			merchantNames[o.MerchantID] = name
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if o.OrderDate != nil {
			write(1, o.OrderDate.Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, name)
		if o.OrderNumber != nil {
			write(3, *o.OrderNumber)
		}
		write(4, string(o.Status))
		write(5, itemSummary(o.Items))
		if o.Total != nil {
			write(6, fmt.Sprintf("%s %.2f", o.Total.Currency, o.Total.Amount))
		}
		if o.ReturnWindowEnd != nil {
			write(7, o.ReturnWindowEnd.Format("2006-01-02"))
		}
		write(8, truncate(strings.Join(o.Notes, "; "), 140))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 22) // merchant
	_ = f.SetColWidth(sheet, "C", "C", 20) // order number
	_ = f.SetColWidth(sheet, "D", "D", 12) // status
	_ = f.SetColWidth(sheet, "E", "E", 40) // items
	_ = f.SetColWidth(sheet, "F", "G", 16) // total / window
	_ = f.SetColWidth(sheet, "H", "H", 48) // notes

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID.String(),
		"rows", len(ords),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func itemSummary(items []entity.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
		} else {
			parts = append(parts, it.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
