package store

import (
	"context"
	"fmt"
	"time"

	"warehouse-service/internal/models"
)

// CreateReport stores a manifest row under the next REP-### id
func (s *Store) CreateReport(ctx context.Context, report *models.GeneratedReport) error {
	query := `
		INSERT INTO generated_reports (id, report_name, report_type, generated_at, file_format, file_size_kb, status)
		VALUES ($1, $2, $3, NOW(), $4, $5, $6)
		RETURNING *`

	return s.insertWithID(ctx, reportIDs, "", func(id string) error {
		return s.db.GetContext(ctx, report, query,
			id, report.ReportName, report.ReportType, report.FileFormat, report.FileSizeKB, report.Status)
	})
}

// GetReport retrieves a manifest row by ID
func (s *Store) GetReport(ctx context.Context, id string) (*models.GeneratedReport, error) {
	var report models.GeneratedReport
	err := s.db.GetContext(ctx, &report, "SELECT * FROM generated_reports WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", id, mapError(err))
	}
	return &report, nil
}

// ListRecentReports retrieves the latest manifest rows
func (s *Store) ListRecentReports(ctx context.Context, limit int) ([]models.GeneratedReport, error) {
	reports := []models.GeneratedReport{}
	err := s.db.SelectContext(ctx, &reports,
		"SELECT * FROM generated_reports ORDER BY generated_at DESC, id DESC LIMIT $1", limit)
	return reports, err
}

// ReportOverview counts manifest rows overall, this month and per type
func (s *Store) ReportOverview(ctx context.Context) (*models.ReportOverview, error) {
	var totals struct {
		Total     int        `db:"total"`
		ThisMonth int        `db:"this_month"`
		Last      *time.Time `db:"last_generated"`
	}
	err := s.db.GetContext(ctx, &totals, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE generated_at >= date_trunc('month', NOW())) AS this_month,
		       MAX(generated_at) AS last_generated
		FROM generated_reports`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	var byType []struct {
		Type  string `db:"report_type"`
		Count int    `db:"n"`
	}
	err = s.db.SelectContext(ctx, &byType,
		"SELECT report_type, COUNT(*) AS n FROM generated_reports GROUP BY report_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count reports by type: %w", err)
	}

	overview := &models.ReportOverview{
		TotalReports:    totals.Total,
		ThisMonth:       totals.ThisMonth,
		ByType:          make(map[string]int, len(models.ReportTypes)),
		LastGeneratedAt: totals.Last,
	}
	for _, t := range models.ReportTypes {
		overview.ByType[t] = 0
	}
	for _, row := range byType {
		overview.ByType[row.Type] = row.Count
	}
	return overview, nil
}

// FinancialSummary derives the three money totals of the financial report
func (s *Store) FinancialSummary(ctx context.Context) (*models.FinancialSummary, error) {
	var summary models.FinancialSummary
	err := s.db.GetContext(ctx, &summary, `
		SELECT
			(SELECT COALESCE(SUM(quantity * unit_value), 0) FROM products)           AS inventory_value,
			(SELECT COALESCE(SUM(value), 0) FROM incoming_shipments)                 AS incoming_value,
			(SELECT COALESCE(SUM(value), 0) FROM outgoing_shipments)                 AS outgoing_value`)
	if err != nil {
		return nil, fmt.Errorf("failed to sum financials: %w", err)
	}
	return &summary, nil
}
