// Package fiskalizacija: motor de intercambio con el CIS (firma, envío,
// verificación y correlación) y los casos de uso que lo usan.
package fiskalizacija

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	domainfisk "github.com/jhoicas/fiskal-api/internal/domain/fisk"
	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// State ciclo de vida de una petición: Unsent → Sent → Verified | Unverified | Failed.
// Unverified cubre firma inválida, respuesta firmada sin verificador e IdPoruke distinto;
// Failed cubre errores de transporte y SOAP Fault.
type State int

const (
	StateUnsent State = iota
	StateSent
	StateVerified
	StateUnverified
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnsent:
		return "unsent"
	case StateSent:
		return "sent"
	case StateVerified:
		return "verified"
	case StateUnverified:
		return "unverified"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Request es la base común de todas las peticiones al CIS. Cada instancia se
// usa desde una sola goroutine.
type Request struct {
	*xmlschema.Element
	session *Session
	tip     string

	state        State
	lastRequest  *etree.Document
	lastReply    []byte
	response     *etree.Element
	errors       []string
	idPoruke     string
	datumVrijeme time.Time
}

func newRequest(s *Session, tip string, el *xmlschema.Element) *Request {
	return &Request{Element: el, session: s, tip: tip}
}

// newZahtjev crea una petición con Zaglavlje + cuerpo y el Id que referencia la firma.
func newZahtjev(s *Session, tip, name, id, bodyField string, bodyValidator xmlschema.Validator, body any) (*Request, error) {
	el := xmlschema.New(name, pkgfisk.NamespaceFisk,
		xmlschema.F("Zaglavlje", xmlschema.Type[*domainfisk.Zaglavlje](), xmlschema.Required()),
		xmlschema.F(bodyField, bodyValidator, xmlschema.Required()),
	)
	el.SetAttr("Id", id)
	if err := el.Set("Zaglavlje", domainfisk.NewZaglavlje()); err != nil {
		return nil, err
	}
	if err := el.Set(bodyField, body); err != nil {
		return nil, err
	}
	return newRequest(s, tip, el), nil
}

// ── Accesores ────────────────────────────────────────────────────────────────

func (r *Request) State() State { return r.state }

// LastRequest último sobre construido (antes de firmar).
func (r *Request) LastRequest() *etree.Document { return r.lastRequest }

// LastReply cuerpo crudo de la última respuesta del CIS.
func (r *Request) LastReply() []byte { return r.lastReply }

// Response elemento utilizable de la última respuesta o nil.
func (r *Request) Response() *etree.Element { return r.response }

// Errors mensajes PorukaGreske de la última ejecución, en orden de documento.
func (r *Request) Errors() []string { return append([]string(nil), r.errors...) }

// IdPoruke identificador del último mensaje enviado ("" para Echo).
func (r *Request) IdPoruke() string { return r.idPoruke }

// DatumVrijeme marca de tiempo del último mensaje enviado.
func (r *Request) DatumVrijeme() time.Time { return r.datumVrijeme }

// ── Protocolo ────────────────────────────────────────────────────────────────

// BuildEnvelope serializa la petición dentro de un sobre SOAP. La cabecera se regenera.
func (r *Request) BuildEnvelope() (*etree.Document, error) {
	el, err := r.Generate()
	if err != nil {
		return nil, err
	}
	return pkgfisk.NewEnvelope(el), nil
}

// Send firma (si hay firmador), envía, verifica la firma de la respuesta y la
// correlaciona por IdPoruke. Devuelve nil sin error cuando la respuesta no es utilizable.
func (r *Request) Send(ctx context.Context) (*etree.Element, error) {
	log := r.session.logger().With().Str("tip", r.tip).Logger()
	start := time.Now()

	env, err := r.BuildEnvelope()
	if err != nil {
		return nil, err
	}
	r.lastRequest = env
	r.lastReply = nil
	r.response = nil
	r.captureHeader()
	if r.idPoruke != "" {
		log = log.With().Str("id_poruke", r.idPoruke).Logger()
	}

	var payload []byte
	if r.session.Signer != nil {
		payload, err = r.session.Signer.Sign(env, r.XMLName())
	} else {
		payload, err = env.WriteToBytes()
	}
	if err != nil {
		return nil, fmt.Errorf("fiskalizacija: preparar sobre: %w", err)
	}

	r.state = StateSent
	raw, err := r.session.Transport.Send(ctx, payload)
	if err != nil {
		r.finish(StateFailed, start)
		log.Error().Err(err).Msg("envío al CIS fallido")
		return nil, err
	}
	r.lastReply = raw

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		r.finish(StateFailed, start)
		return nil, fmt.Errorf("fiskalizacija: parsear respuesta: %w", err)
	}

	var verified *etree.Element
	if pkgfisk.FindFirst(doc.Root(), pkgfisk.NamespaceDSig, "Signature") == nil {
		verified = doc.Root()
	} else if r.session.Verifier != nil {
		verified, err = r.session.Verifier.Verify(raw)
		if err != nil {
			log.Warn().Err(err).Msg("firma de la respuesta no válida")
			verified = nil
		}
	} else if r.session.StrictSignatures {
		r.finish(StateUnverified, start)
		return nil, pkgfisk.ErrUnverifiedReply
	} else {
		log.Warn().Msg("respuesta firmada descartada: no hay verificador configurado")
	}

	if verified != nil && r.idPoruke != "" {
		id := pkgfisk.FindFirst(verified, pkgfisk.NamespaceFisk, "IdPoruke")
		if id == nil || strings.TrimSpace(id.Text()) != r.idPoruke {
			log.Warn().Msg("IdPoruke de la respuesta no coincide con la petición")
			verified = nil
		}
	}

	r.response = verified
	if verified == nil {
		r.finish(StateUnverified, start)
		return nil, nil
	}
	r.finish(StateVerified, start)
	return verified, nil
}

func (r *Request) finish(s State, start time.Time) {
	r.state = s
	r.session.Metrics.observe(r.tip, s.String(), time.Since(start))
}

// captureHeader guarda IdPoruke y DatumVrijeme de la cabecera recién generada.
func (r *Request) captureHeader() {
	r.idPoruke = ""
	r.datumVrijeme = time.Time{}
	v, err := r.Get("Zaglavlje")
	if err != nil {
		return
	}
	z, ok := v.(*domainfisk.Zaglavlje)
	if !ok {
		return
	}
	r.idPoruke = z.IdPoruke()
	if dt, err := z.DatumVrijeme(); err == nil {
		r.datumVrijeme = dt
	}
}

// collectErrors extrae los textos PorukaGreske de la respuesta.
func (r *Request) collectErrors(reply *etree.Element) {
	for _, e := range pkgfisk.FindAll(reply, pkgfisk.NamespaceFisk, "PorukaGreske") {
		r.errors = append(r.errors, strings.TrimSpace(e.Text()))
	}
}

// firstText devuelve el texto del primer elemento f73 con ese nombre.
func firstText(reply *etree.Element, local string) (string, bool) {
	el := pkgfisk.FindFirst(reply, pkgfisk.NamespaceFisk, local)
	if el == nil {
		return "", false
	}
	return strings.TrimSpace(el.Text()), true
}

// IsModelError indica si err proviene de la validación del modelo.
func IsModelError(err error) bool {
	var fe *xmlschema.FieldError
	return errors.As(err, &fe)
}
