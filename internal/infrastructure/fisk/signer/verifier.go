package signer

import (
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/leifj/signedxml"

	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// SignatureVerifier valida las respuestas firmadas del CIS. El certificado de la
// firma debe encadenar con el almacén del entorno (demo o producción).
// No se restringen los algoritmos: el CIS demo sigue firmando con RSA-SHA1.
type SignatureVerifier struct {
	roots         *x509.CertPool
	intermediates *x509.CertPool
}

// NewSignatureVerifier crea el verificador. Los certificados autofirmados del
// almacén se usan como raíz; el resto como intermedios.
func NewSignatureVerifier(bundle []*x509.Certificate) *SignatureVerifier {
	v := &SignatureVerifier{roots: x509.NewCertPool(), intermediates: x509.NewCertPool()}
	for _, c := range bundle {
		if c.CheckSignatureFrom(c) == nil {
			v.roots.AddCert(c)
		} else {
			v.intermediates.AddCert(c)
		}
	}
	return v
}

// Verify implementa pkg/fisk.Verifier. Devuelve el elemento referenciado por la firma.
func (v *SignatureVerifier) Verify(raw []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("verificar: parsear respuesta: %w", err)
	}
	sig := pkgfisk.FindFirst(doc.Root(), NamespaceDS, "Signature")
	if sig == nil {
		return nil, fmt.Errorf("verificar: respuesta sin ds:Signature")
	}
	certEl := pkgfisk.FindFirst(sig, NamespaceDS, "X509Certificate")
	if certEl == nil {
		return nil, fmt.Errorf("verificar: firma sin X509Certificate")
	}
	der, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(certEl.Text()), ""))
	if err != nil {
		return nil, fmt.Errorf("verificar: decodificar certificado: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("verificar: parsear certificado: %w", err)
	}
	if _, err := cert.Verify(x509.VerifyOptions{
		Roots:         v.roots,
		Intermediates: v.intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}); err != nil {
		return nil, fmt.Errorf("verificar: cadena de certificados: %w", err)
	}

	validator, err := signedxml.NewValidator(string(raw))
	if err != nil {
		return nil, fmt.Errorf("verificar: crear validador: %w", err)
	}
	validator.Certificates = append(validator.Certificates, *cert)
	validator.SetReferenceIDAttribute(ReferenceIDAttribute)

	refs, err := validator.ValidateReferences()
	if err != nil {
		return nil, fmt.Errorf("verificar: firma inválida: %w", err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("verificar: la firma no referencia ningún elemento")
	}

	signed := etree.NewDocument()
	if err := signed.ReadFromString(refs[0]); err != nil {
		return nil, fmt.Errorf("verificar: parsear elemento firmado: %w", err)
	}
	return signed.Root(), nil
}

var _ pkgfisk.Verifier = (*SignatureVerifier)(nil)
