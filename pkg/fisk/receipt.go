package fisk

import (
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptVerifyURL es la página pública de verificación de recibos.
const ReceiptVerifyURL = "https://porezna.gov.hr/rn"

// layoutQR fecha del QR: yyyyMMdd_HHmm.
const layoutQR = "20060102_1504"

// ReceiptURL construye el contenido del QR impreso en el recibo. Con JIR se usa
// jir; sin él (factura pendiente de reenvío) se usa zki. El importe va en céntimos.
func ReceiptURL(jir, zki string, datVrijeme time.Time, iznos decimal.Decimal) string {
	q := url.Values{}
	if jir != "" {
		q.Set("jir", jir)
	} else {
		q.Set("zki", zki)
	}
	q.Set("datv", datVrijeme.Format(layoutQR))
	q.Set("izn", iznos.Round(2).Shift(2).StringFixed(0))
	return ReceiptVerifyURL + "?" + q.Encode()
}
