package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/query"
)

// ValuationRow fila del reporte de valoración para el generador de PDF.
type ValuationRow struct {
	Name      string
	Unit      string
	OnHand    decimal.Decimal
	Reserved  decimal.Decimal
	Available decimal.Decimal
	Status    string
	UnitValue decimal.Decimal
	Value     decimal.Decimal
}

// ValuationReport datos completos del reporte de valoración de inventario.
type ValuationReport struct {
	GeneratedAt time.Time
	GeneratedBy string
	Rows        []ValuationRow
	Total       decimal.Decimal
}

// PDFGenerator puerto del generador de PDF (implementado en infrastructure/pdf).
type PDFGenerator interface {
	GenerateValuationPDF(ctx context.Context, report *ValuationReport) ([]byte, error)
}

// UseCase arma el reporte de valoración desde el servicio de consultas y lo
// entrega como PDF. Solo lectura.
type UseCase struct {
	queries   *query.UseCase
	generator PDFGenerator
}

// NewUseCase construye el caso de uso de reportes.
func NewUseCase(queries *query.UseCase, generator PDFGenerator) *UseCase {
	return &UseCase{queries: queries, generator: generator}
}

// ValuationPDF genera el PDF de valoración del inventario completo.
func (uc *UseCase) ValuationPDF(ctx context.Context, actor string) ([]byte, error) {
	valuations, total, err := uc.queries.Valuation(ctx)
	if err != nil {
		return nil, err
	}
	report := &ValuationReport{
		GeneratedAt: time.Now(),
		GeneratedBy: actor,
		Total:       total,
	}
	for _, v := range valuations {
		pos, err := uc.queries.Position(ctx, v.Item.ID)
		if err != nil {
			return nil, err
		}
		report.Rows = append(report.Rows, ValuationRow{
			Name:      v.Item.Name,
			Unit:      v.Item.Unit,
			OnHand:    pos.OnHand,
			Reserved:  pos.Reserved,
			Available: pos.Available,
			Status:    pos.Status,
			UnitValue: v.Item.UnitValue,
			Value:     v.Value,
		})
	}
	return uc.generator.GenerateValuationPDF(ctx, report)
}
