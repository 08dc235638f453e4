package fiskalizacija

import (
	"context"

	"github.com/jhoicas/fiskal-api/internal/domain/entity"
	"github.com/jhoicas/fiskal-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el repositorio atado a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.FiskalizacijaRepository) error) error
}

// ReceiptPDFGenerator genera el recibo impreso con ZKI, JIR y el código QR de verificación.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, f *entity.Fiskalizacija, qrURL string) ([]byte, error)
}
