package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/report"
	"warehouse-service/internal/settings"
	"warehouse-service/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRecentReports = 5
	maxRecentReports     = 100
	idempotencyTTL       = 24 * time.Hour
	// reportClaimTTL bounds an in-flight claim, so a key whose request died
	// before settling frees up on its own.
	reportClaimTTL = 2 * time.Minute
)

// ReportRepository is the persistence ReportService reads and writes
type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.GeneratedReport) error
	GetReport(ctx context.Context, id string) (*models.GeneratedReport, error)
	ListRecentReports(ctx context.Context, limit int) ([]models.GeneratedReport, error)
	ReportOverview(ctx context.Context) (*models.ReportOverview, error)
	FinancialSummary(ctx context.Context) (*models.FinancialSummary, error)

	ListProducts(ctx context.Context) ([]models.Product, error)
	ListZones(ctx context.Context) ([]models.WarehouseZone, error)
	ListAudits(ctx context.Context, limit int) ([]models.InventoryAudit, error)
	ListIncomingShipments(ctx context.Context) ([]models.IncomingShipment, error)
	ListOutgoingShipments(ctx context.Context) ([]models.OutgoingShipment, error)
}

// ReportSettings reads the settings groups a report depends on
type ReportSettings interface {
	General(ctx context.Context) (settings.General, error)
	Warehouse(ctx context.Context) (settings.Warehouse, error)
}

// IdempotencyStore remembers which request keys already produced a result
type IdempotencyStore interface {
	ClaimIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	GetIdempotencyKey(ctx context.Context, key string) (string, bool, error)
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteIdempotencyKey(ctx context.Context, key string) error
}

// Notifier records a console notification
type Notifier interface {
	Notify(ctx context.Context, notificationType, message, link string) (*models.AppNotification, error)
}

// ReportService generates, lists and shares spreadsheet reports
type ReportService struct {
	repo           ReportRepository
	settings       ReportSettings
	notifier       Notifier
	idempotency    IdempotencyStore
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewReportService creates a new report service. idempotency may be nil,
// in which case Idempotency-Key headers are ignored.
func NewReportService(
	repo ReportRepository,
	settings ReportSettings,
	notifier Notifier,
	idempotency IdempotencyStore,
	eventPublisher *broker.EventPublisher,
) *ReportService {
	return &ReportService{
		repo:           repo,
		settings:       settings,
		notifier:       notifier,
		idempotency:    idempotency,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// GenerateReportRequest represents a request to generate a report
type GenerateReportRequest struct {
	ReportType string `json:"report_type"`
	ReportName string `json:"report_name"`
	FileFormat string `json:"file_format"`
}

func (r GenerateReportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReportType, validation.Required),
		validation.Field(&r.ReportName, validation.Length(0, 255)),
		validation.Field(&r.FileFormat, validation.Length(0, 10)),
	)
}

// GenerateReportResult is the manifest of a generated report. Financial
// reports also carry the three sums.
type GenerateReportResult struct {
	models.GeneratedReport
	*models.FinancialSummary
}

// ShareReportRequest represents a request to share a report by email
type ShareReportRequest struct {
	ReportID   string   `json:"report_id"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

func (r ShareReportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReportID, validation.Required),
		validation.Field(&r.Recipients,
			validation.Required.Error("at least one recipient is required"),
			validation.Each(validation.Required, is.Email),
		),
		validation.Field(&r.Message, validation.Length(0, 1000)),
	)
}

// ShareResult acknowledges a share request
type ShareResult struct {
	ShareID    string   `json:"share_id"`
	ReportID   string   `json:"report_id"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

// ReportTypeInfo describes one report type for the console
type ReportTypeInfo struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
}

// Download is a rendered workbook ready to send
type Download struct {
	Filename    string
	ContentType string
	Content     []byte
}

var reportDescriptions = map[string][2]string{
	models.ReportInventory:   {"Inventory Report", "Stock levels and value per product"},
	models.ReportShipments:   {"Shipments Report", "Incoming and outgoing shipments"},
	models.ReportAudits:      {"Audits Report", "Inventory audit schedule and accuracy"},
	models.ReportPerformance: {"Performance Report", "Zone utilisation and conditions"},
	models.ReportFinancial:   {"Financial Report", "Inventory and shipment value totals"},
}

// Types lists the supported report types in display order
func (s *ReportService) Types() []ReportTypeInfo {
	out := make([]ReportTypeInfo, 0, len(models.ReportTypes))
	for _, t := range models.ReportTypes {
		headers, _ := report.Headers(t)
		d := reportDescriptions[t]
		out = append(out, ReportTypeInfo{Type: t, Name: d[0], Description: d[1], Columns: headers})
	}
	return out
}

// Generate builds the workbook, records its manifest row and returns it.
// A non-empty idempotencyKey returns the earlier report for a repeated key.
func (s *ReportService) Generate(ctx context.Context, req *GenerateReportRequest, idempotencyKey string) (*GenerateReportResult, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Generate")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}
	if !models.IsReportType(req.ReportType) {
		return nil, fmt.Errorf("%w: report type %q", models.ErrUnimplemented, req.ReportType)
	}

	if idempotencyKey != "" && s.idempotency != nil {
		existing, err := s.claim(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.withFinancials(ctx, existing)
		}
	}

	result, err := s.generate(ctx, req)
	if idempotencyKey != "" && s.idempotency != nil {
		s.settle(ctx, idempotencyKey, result, err)
	}
	return result, err
}

func (s *ReportService) generate(ctx context.Context, req *GenerateReportRequest) (*GenerateReportResult, error) {
	start := time.Now()
	now := start.UTC()

	data, err := s.dataset(ctx, req.ReportType)
	if err != nil {
		return nil, err
	}

	name := req.ReportName
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("%s %s", reportDescriptions[req.ReportType][0], now.Format("2006-01-02"))
	}

	content, err := s.render(ctx, req.ReportType, name, data, now)
	if err != nil {
		return nil, err
	}
	util.ReportBuildLatency.WithLabelValues(req.ReportType).Observe(time.Since(start).Seconds())

	manifest := &models.GeneratedReport{
		ReportName: name,
		ReportType: req.ReportType,
		FileFormat: orDefault(req.FileFormat, models.ReportFormatDefault),
		FileSizeKB: report.SizeKB(len(content)),
		Status:     models.ReportStatusCompleted,
	}
	if err := s.repo.CreateReport(ctx, manifest); err != nil {
		return nil, fmt.Errorf("failed to record report: %w", err)
	}

	util.ReportsGeneratedTotal.WithLabelValues(req.ReportType).Inc()
	s.logger.Info("Report generated",
		zap.String("report_id", manifest.ID),
		zap.String("type", manifest.ReportType),
		zap.Int("size_kb", manifest.FileSizeKB))

	event := &models.ReportGeneratedEvent{
		ReportID:   manifest.ID,
		ReportName: manifest.ReportName,
		ReportType: manifest.ReportType,
	}
	if err := s.eventPublisher.PublishReportGenerated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReportGenerated event", zap.Error(err))
	}

	result := &GenerateReportResult{GeneratedReport: *manifest}
	if req.ReportType == models.ReportFinancial {
		summary := data.Financial
		result.FinancialSummary = &summary
	}
	return result, nil
}

// claim reserves the key for reportClaimTTL. It returns the earlier
// manifest when the key already completed, and ErrConflict while another
// request holds it. settle extends a completed key to idempotencyTTL.
func (s *ReportService) claim(ctx context.Context, key string) (*models.GeneratedReport, error) {
	key = "report:" + key

	ok, err := s.idempotency.ClaimIdempotencyKey(ctx, key, "", reportClaimTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if ok {
		return nil, nil
	}

	reportID, found, err := s.idempotency.GetIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if !found || reportID == "" {
		return nil, fmt.Errorf("%w: report generation already in progress for this key", models.ErrConflict)
	}

	s.logger.Info("Duplicate report request detected", zap.String("report_id", reportID))
	return s.repo.GetReport(ctx, reportID)
}

func (s *ReportService) settle(ctx context.Context, key string, result *GenerateReportResult, genErr error) {
	key = "report:" + key

	var err error
	if genErr != nil {
		err = s.idempotency.DeleteIdempotencyKey(ctx, key)
	} else {
		err = s.idempotency.SetIdempotencyKey(ctx, key, result.ID, idempotencyTTL)
	}
	if err != nil {
		s.logger.Error("Failed to settle idempotency key", zap.Error(err))
	}
}

func (s *ReportService) withFinancials(ctx context.Context, manifest *models.GeneratedReport) (*GenerateReportResult, error) {
	result := &GenerateReportResult{GeneratedReport: *manifest}
	if manifest.ReportType == models.ReportFinancial {
		summary, err := s.repo.FinancialSummary(ctx)
		if err != nil {
			return nil, err
		}
		result.FinancialSummary = summary
	}
	return result, nil
}

// Download regenerates the workbook of a recorded report from current data
func (s *ReportService) Download(ctx context.Context, id string) (*Download, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Download")
	defer span.End()

	manifest, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.dataset(ctx, manifest.ReportType)
	if err != nil {
		return nil, err
	}

	content, err := s.render(ctx, manifest.ReportType, manifest.ReportName, data, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &Download{
		Filename:    fmt.Sprintf("%s-%s.xlsx", manifest.ID, slug(manifest.ReportName)),
		ContentType: report.ContentType,
		Content:     content,
	}, nil
}

// Overview summarises the generated reports
func (s *ReportService) Overview(ctx context.Context) (*models.ReportOverview, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Overview")
	defer span.End()

	return s.repo.ReportOverview(ctx)
}

// Recent returns the latest reports. limit <= 0 means the default of 5.
func (s *ReportService) Recent(ctx context.Context, limit int) ([]models.GeneratedReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Recent")
	defer span.End()

	if limit <= 0 {
		limit = defaultRecentReports
	}
	if limit > maxRecentReports {
		limit = maxRecentReports
	}
	return s.repo.ListRecentReports(ctx, limit)
}

// Share records that a report was sent to the given recipients. Delivery
// itself happens outside this service.
func (s *ReportService) Share(ctx context.Context, req *ShareReportRequest) (*ShareResult, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Share")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	manifest, err := s.repo.GetReport(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Report %q shared with %d recipient(s)", manifest.ReportName, len(req.Recipients))
	if _, err := s.notifier.Notify(ctx, models.NotificationInfo, message, "/reports/"+manifest.ID); err != nil {
		s.logger.Error("Failed to record share notification", zap.Error(err))
	}

	result := &ShareResult{
		ShareID:    uuid.New().String(),
		ReportID:   manifest.ID,
		Recipients: req.Recipients,
		Message:    req.Message,
	}
	s.logger.Info("Report shared",
		zap.String("report_id", manifest.ID),
		zap.String("share_id", result.ShareID),
		zap.Int("recipients", len(req.Recipients)))
	return result, nil
}

// dataset loads only the rows reportType needs
func (s *ReportService) dataset(ctx context.Context, reportType string) (*report.Dataset, error) {
	data := &report.Dataset{}
	var err error

	switch reportType {
	case models.ReportInventory:
		data.LowStockThreshold = lowStockThreshold(ctx, s.settings, s.logger)
		data.Products, err = s.repo.ListProducts(ctx)
	case models.ReportAudits:
		data.Audits, err = s.repo.ListAudits(ctx, 0)
	case models.ReportShipments:
		if data.Incoming, err = s.repo.ListIncomingShipments(ctx); err == nil {
			data.Outgoing, err = s.repo.ListOutgoingShipments(ctx)
		}
	case models.ReportPerformance:
		data.Zones, err = s.repo.ListZones(ctx)
	case models.ReportFinancial:
		var summary *models.FinancialSummary
		if summary, err = s.repo.FinancialSummary(ctx); err == nil {
			data.Financial = *summary
		}
	default:
		return nil, fmt.Errorf("%w: report type %q", models.ErrUnimplemented, reportType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load %s report data: %w", reportType, err)
	}
	return data, nil
}

func (s *ReportService) render(ctx context.Context, reportType, title string, data *report.Dataset, at time.Time) ([]byte, error) {
	meta := report.Meta{Title: title, GeneratedAt: at}
	if general, err := s.settings.General(ctx); err == nil {
		meta.CompanyName = general.CompanyName
	} else if !errors.Is(err, context.Canceled) {
		s.logger.Warn("Failed to read general settings", zap.Error(err))
	}

	f, err := report.Build(reportType, data, meta)
	if err != nil {
		return nil, err
	}
	return report.Encode(f)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "report"
	}
	return s
}
