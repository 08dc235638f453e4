package fiskalizacija

import (
	"context"

	domainfisk "github.com/jhoicas/fiskal-api/internal/domain/fisk"
	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// PoslovniProstorZahtjev registra (o cierra) un local comercial.
type PoslovniProstorZahtjev struct{ *Request }

// NewPoslovniProstorZahtjev crea la petición firmada sobre Id="ppz".
func NewPoslovniProstorZahtjev(s *Session, pp *domainfisk.PoslovniProstor) (*PoslovniProstorZahtjev, error) {
	r, err := newZahtjev(s, "poslovni_prostor", "PoslovniProstorZahtjev", pkgfisk.IDPoslovniProstorZahtjev,
		"PoslovniProstor", xmlschema.Type[*domainfisk.PoslovniProstor](), pp)
	if err != nil {
		return nil, err
	}
	return &PoslovniProstorZahtjev{r}, nil
}

// Execute devuelve true si hubo respuesta utilizable sin PorukaGreske.
func (r *PoslovniProstorZahtjev) Execute(ctx context.Context) (bool, error) {
	r.errors = nil
	reply, err := r.Send(ctx)
	if err != nil || reply == nil {
		return false, err
	}
	r.collectErrors(reply)
	return len(r.errors) == 0, nil
}
