// Package pdf genera el recibo fiscal impreso (fiskalni račun).
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────────┐
//	│  OIB emisor            │  Nº factura + fecha  │
//	│  ───────────────────────────────────────────  │
//	│  Importe total / forma de pago / operador     │
//	│  ───────────────────────────────────────────  │
//	│  ZKI + JIR                                    │
//	│  QR de verificación    │  leyenda             │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fiskal-api/internal/application/fiskalizacija"
	"github.com/jhoicas/fiskal-api/internal/domain/entity"
)

var _ fiskalizacija.ReceiptPDFGenerator = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 40, Blue: 30}
)

var naciniPlacanja = map[string]string{
	"G": "Gotovina",
	"K": "Kartica",
	"C": "Ček",
	"T": "Transakcijski račun",
	"O": "Ostalo",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa fiskalizacija.ReceiptPDFGenerator usando Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// GenerateReceiptPDF genera el recibo y devuelve sus bytes. Sin JIR se imprime
// el aviso de fiscalización posterior.
func (g *ReceiptGenerator) GenerateReceiptPDF(_ context.Context, f *entity.Fiskalizacija, qrURL string) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("pdf: registro nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Fiskalni račun "+f.BrojRacuna, true).
		WithAuthor(f.Oib, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(f))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(totalsRow(f))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(fiscalRows(f, qrURL)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(f *entity.Fiskalizacija) core.Row {
	return row.New(16).Add(
		col.New(6).Add(
			text.New("OIB: "+f.Oib, props.Text{Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 1}),
		),
		col.New(6).Add(
			text.New("RAČUN "+f.BrojRacuna, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1}),
			text.New(f.DatumVrijeme.Format("02.01.2006. 15:04:05"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func totalsRow(f *entity.Fiskalizacija) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 2})
	}
	return row.New(14).Add(
		col.New(6).Add(
			label("Način plaćanja: "+nonEmpty(naciniPlacanja[f.NacinPlac], f.NacinPlac)),
		),
		col.New(6).Add(
			text.New("UKUPNO: "+FormatEUR(f.IznosUkupno), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
		),
	)
}

// fiscalRows: ZKI, JIR y QR de verificación.
func fiscalRows(f *entity.Fiskalizacija, qrURL string) []core.Row {
	small := props.Text{Size: 7.5, Color: colorGray, Top: 1}
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("ZKI: "+f.ZastKod, small))),
	}
	if f.Jir != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New("JIR: "+f.Jir, small))))
	} else {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Račun nije fiskaliziran u trenutku izdavanja; naknadna dostava u tijeku.", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 2,
			}),
		)))
	}
	rows = append(rows, row.New(3))

	if qrURL != "" {
		rows = append(rows, row.New(40).Add(
			col.New(5).Add(code.NewQr(qrURL, props.Rect{Percent: 95, Center: true})),
			col.New(7).Add(
				text.New("Provjerite račun skeniranjem QR koda\nna stranicama Porezne uprave.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
			),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatEUR formatea al estilo croata: punto de miles, coma decimal.
// Ej: 1234.5 → "1.234,50 EUR"
func FormatEUR(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	out := formatThousands(intPart) + "," + frac + " EUR"
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
