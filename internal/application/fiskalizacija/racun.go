package fiskalizacija

import (
	"context"

	domainfisk "github.com/jhoicas/fiskal-api/internal/domain/fisk"
	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// RacunZahtjev envía una factura para obtener su JIR.
type RacunZahtjev struct {
	*Request
	racun *domainfisk.Racun
}

// NewRacunZahtjev crea la petición firmada sobre Id="rac".
func NewRacunZahtjev(s *Session, racun *domainfisk.Racun) (*RacunZahtjev, error) {
	r, err := newZahtjev(s, "racun", "RacunZahtjev", pkgfisk.IDRacunZahtjev,
		"Racun", xmlschema.Type[*domainfisk.Racun](), racun)
	if err != nil {
		return nil, err
	}
	return &RacunZahtjev{Request: r, racun: racun}, nil
}

// Racun devuelve la factura enviada.
func (r *RacunZahtjev) Racun() *domainfisk.Racun { return r.racun }

// Execute devuelve el JIR. Sin Jir en la respuesta, ok es false y Errors()
// contiene los PorukaGreske.
func (r *RacunZahtjev) Execute(ctx context.Context) (string, bool, error) {
	r.errors = nil
	reply, err := r.Send(ctx)
	if err != nil || reply == nil {
		return "", false, err
	}
	if jir, ok := firstText(reply, "Jir"); ok {
		return jir, true, nil
	}
	r.collectErrors(reply)
	return "", false, nil
}
