// Package report renders warehouse data into spreadsheet workbooks with a
// fixed column layout per report type.
package report

import (
	"bytes"
	"fmt"
	"time"

	"warehouse-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the produced workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Number formats applied to typed columns
const (
	moneyFormat   = "#,##0.00"
	percentFormat = "0.00"
)

// Stock status labels of the inventory report
const (
	StockOut    = "Out of Stock"
	StockLow    = "Low Stock"
	StockOver   = "Overstock"
	StockNormal = "In Stock"
)

// Dataset holds the rows a report is built from. Each report type reads
// only the fields it needs.
type Dataset struct {
	Products          []models.Product
	Zones             []models.WarehouseZone
	Audits            []models.InventoryAudit
	Incoming          []models.IncomingShipment
	Outgoing          []models.OutgoingShipment
	Financial         models.FinancialSummary
	LowStockThreshold int
}

// Meta is written into the workbook's document properties
type Meta struct {
	Title       string
	CompanyName string
	GeneratedAt time.Time
}

type columnKind int

const (
	plain columnKind = iota
	money
	percent
)

type column struct {
	header string
	kind   columnKind
}

type layout struct {
	sheet   string
	columns []column
	rows    func(*Dataset) [][]interface{}
}

var layouts = map[string]layout{
	models.ReportInventory: {
		sheet: "Inventory",
		columns: []column{
			{"Product ID", plain}, {"Product Name", plain}, {"Category", plain}, {"Zone", plain},
			{"Shelf", plain}, {"Quantity", plain}, {"Min Stock", plain}, {"Max Stock", plain},
			{"Unit Value", money}, {"Total Value", money}, {"Stock Status", plain},
		},
		rows: inventoryRows,
	},
	models.ReportAudits: {
		sheet: "Audits",
		columns: []column{
			{"Audit ID", plain}, {"Zone", plain}, {"Scheduled Date", plain}, {"Auditor", plain},
			{"Audit Type", plain}, {"Status", plain}, {"Discrepancies", plain}, {"Accuracy (%)", percent},
		},
		rows: auditRows,
	},
	models.ReportShipments: {
		sheet: "Shipments",
		columns: []column{
			{"Shipment ID", plain}, {"Direction", plain}, {"Counterparty", plain}, {"Date", plain},
			{"Items", plain}, {"Value", money}, {"Tracking / Destination", plain}, {"Status", plain},
		},
		rows: shipmentRows,
	},
	models.ReportPerformance: {
		sheet: "Performance",
		columns: []column{
			{"Zone ID", plain}, {"Zone Name", plain}, {"Capacity", plain}, {"Max Capacity", plain},
			{"Utilization (%)", percent}, {"Products", plain}, {"Temperature", plain},
			{"Humidity", plain}, {"Status", plain},
		},
		rows: performanceRows,
	},
	models.ReportFinancial: {
		sheet:   "Financial",
		columns: []column{{"Metric", plain}, {"Value", money}},
		rows:    financialRows,
	},
}

// Headers returns the column headers of a report type in order
func Headers(reportType string) ([]string, bool) {
	l, ok := layouts[reportType]
	if !ok {
		return nil, false
	}
	out := make([]string, len(l.columns))
	for i, c := range l.columns {
		out[i] = c.header
	}
	return out, true
}

// SheetName returns the worksheet name of a report type
func SheetName(reportType string) string {
	return layouts[reportType].sheet
}

// Build renders the workbook for reportType. An unknown type fails with
// ErrUnimplemented.
func Build(reportType string, data *Dataset, meta Meta) (*excelize.File, error) {
	l, ok := layouts[reportType]
	if !ok {
		return nil, fmt.Errorf("%w: report type %q", models.ErrUnimplemented, reportType)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", l.sheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeSheet(f, l, data); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build %s report: %w", reportType, err)
	}

	err := f.SetDocProps(&excelize.DocProperties{
		Title:   meta.Title,
		Creator: meta.CompanyName,
		Created: meta.GeneratedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Encode serializes a workbook to bytes and closes it
func Encode(f *excelize.File) ([]byte, error) {
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// SizeKB rounds a byte count up to whole KiB
func SizeKB(n int) int {
	return (n + 1023) / 1024
}

func writeSheet(f *excelize.File, l layout, data *Dataset) error {
	sheet := l.sheet

	for i, c := range l.columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, c.header); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return err
	}
	percentStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(percentFormat)})
	if err != nil {
		return err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(l.columns))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	rows := l.rows(data)
	for r, row := range rows {
		rowNum := r + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		lastRow := len(rows) + 1
		for i, c := range l.columns {
			style := 0
			switch c.kind {
			case money:
				style = moneyStyle
			case percent:
				style = percentStyle
			default:
				continue
			}
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, lastRow), style); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func strPtr(s string) *string { return &s }

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// StockStatus classifies a product's quantity against its stock bounds.
// threshold applies when the product has no min stock of its own.
func StockStatus(p models.Product, threshold int) string {
	floor := p.MinStock
	if floor == 0 {
		floor = threshold
	}
	switch {
	case p.Quantity == 0:
		return StockOut
	case p.Quantity <= floor:
		return StockLow
	case p.MaxStock > 0 && p.Quantity > p.MaxStock:
		return StockOver
	}
	return StockNormal
}

func inventoryRows(d *Dataset) [][]interface{} {
	rows := make([][]interface{}, 0, len(d.Products))
	for _, p := range d.Products {
		total := p.UnitValue.Mul(decimal.NewFromInt(int64(p.Quantity)))
		rows = append(rows, []interface{}{
			p.ID, p.Name, p.Category, p.Zone, p.Shelf,
			p.Quantity, p.MinStock, p.MaxStock,
			number(p.UnitValue), number(total),
			StockStatus(p, d.LowStockThreshold),
		})
	}
	return rows
}

func auditRows(d *Dataset) [][]interface{} {
	rows := make([][]interface{}, 0, len(d.Audits))
	for _, a := range d.Audits {
		rows = append(rows, []interface{}{
			a.ID, a.Zone, a.ScheduledDate.Format("2006-01-02"), a.Auditor,
			a.AuditType, a.Status, a.Discrepancies, number(a.Accuracy),
		})
	}
	return rows
}

func shipmentRows(d *Dataset) [][]interface{} {
	rows := make([][]interface{}, 0, len(d.Incoming)+len(d.Outgoing))
	for _, s := range d.Incoming {
		rows = append(rows, []interface{}{
			s.ID, "Incoming", s.Supplier, s.ETA.Format("2006-01-02 15:04"),
			s.Items, number(s.Value), s.Tracking, s.Status,
		})
	}
	for _, s := range d.Outgoing {
		rows = append(rows, []interface{}{
			s.ID, "Outgoing", s.Customer, s.Departure.Format("2006-01-02 15:04"),
			s.Items, number(s.Value), s.Destination, s.Status,
		})
	}
	return rows
}

func performanceRows(d *Dataset) [][]interface{} {
	rows := make([][]interface{}, 0, len(d.Zones))
	for _, z := range d.Zones {
		rows = append(rows, []interface{}{
			z.ID, z.Name, z.Capacity, z.MaxCapacity,
			z.UtilizationPercent(), z.ProductsCount,
			optional(z.Temperature), optional(z.Humidity), z.Status,
		})
	}
	return rows
}

func financialRows(d *Dataset) [][]interface{} {
	return [][]interface{}{
		{"Total Inventory Value", number(d.Financial.InventoryValue)},
		{"Incoming Shipments Value", number(d.Financial.IncomingValue)},
		{"Outgoing Shipments Value", number(d.Financial.OutgoingValue)},
	}
}
