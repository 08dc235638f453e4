// Package fisk: puertos y catálogos del sistema de fiscalización (CIS, Porezna uprava).
package fisk

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Transport,Signer,Verifier

import (
	"context"
	"crypto"
	"encoding/xml"

	"github.com/beevik/etree"
)

// Transport entrega un sobre SOAP al CIS y devuelve el cuerpo crudo de la respuesta.
// Implementaciones: SOAP sobre HTTPS en internal/infrastructure/fisk; mocks en tests.
type Transport interface {
	// Send publica el payload. Devuelve *TransportError si la respuesta no es XML
	// con estado distinto de 200 y *FaultError si contiene un SOAP Fault.
	Send(ctx context.Context, payload []byte) ([]byte, error)
}

// Signer firma el elemento ancla de un sobre con XML-DSig envolvente.
type Signer interface {
	// Sign inserta ds:Signature dentro del elemento anchor y devuelve el sobre serializado.
	Sign(doc *etree.Document, anchor xml.Name) ([]byte, error)
}

// Verifier comprueba la firma de una respuesta del CIS contra el almacén de confianza.
type Verifier interface {
	// Verify devuelve el elemento firmado si la firma y la cadena de certificados son válidas.
	Verify(raw []byte) (*etree.Element, error)
}

// KeySigner es la llave privada del contribuyente usada para el ZKI.
// *rsa.PrivateKey la satisface; también un token PKCS#11 envuelto.
type KeySigner = crypto.Signer
