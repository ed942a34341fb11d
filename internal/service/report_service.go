package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"compras-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// --- Report DTOs ---

type StatusCount struct {
	Status model.OrderStatus `json:"status"`
	Label  string            `json:"label"`
	Count  int64             `json:"count"`
}

type MonthlyTotal struct {
	Period string          `json:"period"` // YYYY-MM
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type SupplierRanking struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	OrderCount   int64           `json:"order_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

type DashboardResponse struct {
	From          time.Time         `json:"from"`
	To            time.Time         `json:"to"`
	StatusCounts  []StatusCount     `json:"status_counts"`
	MonthlyTotals []MonthlyTotal    `json:"monthly_totals"`
	TopSuppliers  []SupplierRanking `json:"top_suppliers"`
}

// ReportService produces the dashboard aggregates and the tabular XLSX export.
// Aggregation is plain read-only SQL over the order tables.
type ReportService interface {
	GetDashboard(ctx context.Context, from, to time.Time) (DashboardResponse, error)
	ExportOrdersExcel(ctx context.Context, from, to time.Time) ([]byte, error)
}

type reportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) ReportService {
	return &reportService{db: db}
}

func (s *reportService) GetDashboard(ctx context.Context, from, to time.Time) (DashboardResponse, error) {
	resp := DashboardResponse{From: from, To: to}

	var rawCounts []struct {
		Status model.OrderStatus
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Group("status").
		Scan(&rawCounts).Error; err != nil {
		return resp, err
	}
	for _, rc := range rawCounts {
		resp.StatusCounts = append(resp.StatusCounts, StatusCount{
			Status: rc.Status,
			Label:  rc.Status.Label(),
			Count:  rc.Count,
		})
	}

	if err := s.db.WithContext(ctx).Model(&model.Order{}).
		Select("to_char(created_at, 'YYYY-MM') as period, COUNT(*) as count, COALESCE(SUM(total), 0) as total").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Group("period").
		Order("period ASC").
		Scan(&resp.MonthlyTotals).Error; err != nil {
		return resp, err
	}

	if err := s.db.WithContext(ctx).Table("orders").
		Select("suppliers.id as supplier_id, suppliers.name as supplier_name, COUNT(*) as order_count, COALESCE(SUM(orders.total), 0) as total_amount").
		Joins("JOIN suppliers ON suppliers.id = orders.supplier_id").
		Where("orders.created_at >= ? AND orders.created_at <= ?", from, to).
		Group("suppliers.id, suppliers.name").
		Order("total_amount DESC").
		Limit(5).
		Scan(&resp.TopSuppliers).Error; err != nil {
		return resp, err
	}

	return resp, nil
}

func (s *reportService) ExportOrdersExcel(ctx context.Context, from, to time.Time) ([]byte, error) {
	var orders []model.Order
	if err := s.db.WithContext(ctx).
		Preload("Supplier").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Órdenes"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Número", "Estado", "Proveedor", "Subtotal", "Impuesto", "Total", "Creada", "Resuelta por", "Motivo de rechazo"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		supplier := ""
		if order.Supplier != nil {
			supplier = order.Supplier.Name
		}
		resolvedAt := ""
		if order.ResolvedAt != nil {
			resolvedAt = order.ResolvedAt.Format("2006-01-02 15:04")
		}
		values := []interface{}{
			order.OrderNumber,
			order.Status.Label(),
			supplier,
			order.Subtotal.StringFixed(2),
			order.TaxAmount.StringFixed(2),
			order.Total.StringFixed(2),
			order.CreatedAt.Format("2006-01-02"),
			fmt.Sprintf("%s %s", order.ResolvedBy, resolvedAt),
			order.RejectionReason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
