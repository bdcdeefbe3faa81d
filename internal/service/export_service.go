package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/view"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
	"github.com/noah-isme/maintenance-tracker-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportFile is a rendered projection ready to be served.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders collection projections as CSV or PDF.
type ExportService struct {
	equipment   equipmentLister
	maintenance enrichedLister
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(equipment equipmentLister, maintenance enrichedLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		equipment:   equipment,
		maintenance: maintenance,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
		now:         time.Now,
	}
}

// ParseExportFormat validates a requested format; empty means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(raw)) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportPDF:
		return ExportPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
}

// Export projects collection with q and renders every matched row, grouped when q groups.
func (s *ExportService) Export(ctx context.Context, collection string, q dto.ViewQuery, format ExportFormat) (*ExportFile, error) {
	columns, err := Columns(collection)
	if err != nil {
		return nil, err
	}
	var dataset export.Dataset
	switch collection {
	case CollectionEquipment:
		rows, err := s.equipment.List(ctx)
		if err != nil {
			return nil, err
		}
		dataset, err = buildDataset(rows, columns, q)
		if err != nil {
			return nil, err
		}
	case CollectionMaintenance:
		rows, err := s.maintenance.Enriched(ctx)
		if err != nil {
			return nil, err
		}
		dataset, err = buildDataset(rows, columns, q)
		if err != nil {
			return nil, err
		}
	}
	dataset.Title = exportTitle(collection)

	file := &ExportFile{Rows: dataset.RowCount()}
	switch format {
	case ExportCSV:
		file.Payload, err = s.csv.Render(dataset)
		file.ContentType = "text/csv"
	case ExportPDF:
		file.Payload, err = s.pdf.Render(dataset)
		file.ContentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	file.Filename = fmt.Sprintf("%s-%s.%s", collection, s.now().UTC().Format("20060102-150405"), format)
	s.logger.Info("export rendered",
		zap.String("collection", collection),
		zap.String("format", string(format)),
		zap.Int("rows", file.Rows),
		zap.Int("bytes", len(file.Payload)),
	)
	return file, nil
}

func buildDataset[R view.Row](rows []R, columns []string, q dto.ViewQuery) (export.Dataset, error) {
	engine := view.NewEngine[R]()
	if err := ApplyQuery(engine, columns, q); err != nil {
		return export.Dataset{}, err
	}
	result := engine.Project(rows)
	dataset := export.Dataset{Columns: columns}
	if !result.Grouped() {
		dataset.Sections = []export.Section{{Rows: cells(result.Rows, columns)}}
		return dataset, nil
	}
	for _, group := range result.Groups {
		dataset.Sections = append(dataset.Sections, export.Section{Label: groupLabel(group.Key), Rows: cells(group.Rows, columns)})
	}
	return dataset, nil
}

func cells[R view.Row](rows []R, columns []string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(columns))
		for i, column := range columns {
			if v, ok := row.Field(column); ok {
				line[i] = view.Stringify(v)
			}
		}
		out = append(out, line)
	}
	return out
}

func groupLabel(key string) string {
	if key == "" {
		return "(none)"
	}
	return key
}

func exportTitle(collection string) string {
	switch collection {
	case CollectionEquipment:
		return "Equipment"
	case CollectionMaintenance:
		return "Maintenance Records"
	}
	return collection
}
