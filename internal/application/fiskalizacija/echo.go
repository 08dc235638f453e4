package fiskalizacija

import (
	"context"

	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// EchoRequest comprueba la disponibilidad del CIS; no lleva cabecera ni firma propia.
type EchoRequest struct{ *Request }

// NewEchoRequest crea la petición con el texto a devolver (1 a 1000 caracteres).
func NewEchoRequest(s *Session, poruka string) (*EchoRequest, error) {
	el := xmlschema.NewText("EchoRequest", pkgfisk.NamespaceFisk, xmlschema.Len(1, 1000), xmlschema.Required())
	if err := el.SetText(poruka); err != nil {
		return nil, err
	}
	return &EchoRequest{newRequest(s, "echo", el)}, nil
}

// Execute devuelve el texto de EchoResponse. Sin él, ok es false y Errors()
// contiene los PorukaGreske recibidos.
func (r *EchoRequest) Execute(ctx context.Context) (string, bool, error) {
	r.errors = nil
	reply, err := r.Send(ctx)
	if err != nil || reply == nil {
		return "", false, err
	}
	if text, ok := firstText(reply, "EchoResponse"); ok {
		return text, true, nil
	}
	r.collectErrors(reply)
	return "", false, nil
}
