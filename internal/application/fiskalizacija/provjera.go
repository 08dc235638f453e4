package fiskalizacija

import (
	"bytes"
	"context"
	"encoding/xml"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	domainfisk "github.com/jhoicas/fiskal-api/internal/domain/fisk"
	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// ProvjeraKind resultado de la verificación de una factura.
type ProvjeraKind int

const (
	ProvjeraNoReply ProvjeraKind = iota
	ProvjeraMatch
	ProvjeraMismatch
)

func (k ProvjeraKind) String() string {
	switch k {
	case ProvjeraMatch:
		return "match"
	case ProvjeraMismatch:
		return "mismatch"
	}
	return "no_reply"
}

// ProvjeraResult unión etiquetada: en Mismatch, Greske es el elemento de errores
// de la respuesta (puede ser nil si el CIS no lo envía).
type ProvjeraResult struct {
	Kind   ProvjeraKind
	Greske *etree.Element
}

// ProvjeraZahtjev pide al CIS que devuelva la factura tal como la interpreta (solo entorno demo).
type ProvjeraZahtjev struct {
	*Request
	racun *domainfisk.Racun
}

// NewProvjeraZahtjev crea la petición firmada sobre Id="rac".
func NewProvjeraZahtjev(s *Session, racun *domainfisk.Racun) (*ProvjeraZahtjev, error) {
	r, err := newZahtjev(s, "provjera", "ProvjeraZahtjev", pkgfisk.IDRacunZahtjev,
		"Racun", xmlschema.Type[*domainfisk.Racun](), racun)
	if err != nil {
		return nil, err
	}
	return &ProvjeraZahtjev{Request: r, racun: racun}, nil
}

// Execute compara el Racun devuelto con la serialización local.
func (r *ProvjeraZahtjev) Execute(ctx context.Context) (ProvjeraResult, error) {
	r.errors = nil
	reply, err := r.Send(ctx)
	if err != nil || reply == nil {
		return ProvjeraResult{Kind: ProvjeraNoReply}, err
	}

	local, err := r.racun.Generate()
	if err != nil {
		return ProvjeraResult{Kind: ProvjeraNoReply}, err
	}
	if remote := pkgfisk.FindFirst(reply, pkgfisk.NamespaceFisk, "Racun"); remote != nil {
		equal, err := canonicalEqual(remote, local)
		if err != nil {
			return ProvjeraResult{Kind: ProvjeraNoReply}, err
		}
		if equal {
			return ProvjeraResult{Kind: ProvjeraMatch}, nil
		}
	}
	r.collectErrors(reply)
	return ProvjeraResult{
		Kind:   ProvjeraMismatch,
		Greske: pkgfisk.FindFirst(reply, pkgfisk.NamespaceFisk, "Greske"),
	}, nil
}

// ── Comparación canónica ─────────────────────────────────────────────────────

// canonicalEqual compara dos árboles por namespace, nombre, atributos y texto,
// independientemente de los prefijos usados por cada lado.
func canonicalEqual(a, b *etree.Element) (bool, error) {
	ca, err := canonical(a)
	if err != nil {
		return false, err
	}
	cb, err := canonical(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ca, cb), nil
}

func canonical(e *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(normalize(e))
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

// normalize reescribe el árbol con un prefijo fijo por namespace y sin
// espacios en blanco de formato.
func normalize(e *etree.Element) *etree.Element {
	n := etree.NewElement(e.Tag)
	if ns := e.NamespaceURI(); ns != "" {
		n.Space = "n"
		n.CreateAttr("xmlns:n", ns)
	}
	for _, a := range e.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") || a.Space != "" {
			continue
		}
		n.CreateAttr(a.Key, a.Value)
	}
	children := e.ChildElements()
	if len(children) == 0 {
		if text := strings.TrimSpace(e.Text()); text != "" {
			n.SetText(text)
		}
	}
	for _, c := range children {
		n.AddChild(normalize(c))
	}
	return n
}
