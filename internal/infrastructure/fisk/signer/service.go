// Servicio de firma XML-DSig envolvente para los mensajes al CIS.
// Inserta <ds:Signature> como último hijo del elemento firmado (RacunZahtjev, ...).

package signer

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/leifj/signedxml"

	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// DigitalSignatureService firma con RSA-SHA256, digest SHA-256 y C14N exclusiva.
type DigitalSignatureService struct {
	key  *rsa.PrivateKey
	cert *x509.Certificate
}

// NewDigitalSignatureService crea el servicio a partir del certificado del contribuyente.
func NewDigitalSignatureService(cert tls.Certificate) (*DigitalSignatureService, error) {
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("fisk: el certificado debe incluir llave privada RSA")
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("fisk: certificado vacío")
	}
	leaf := cert.Leaf
	if leaf == nil {
		var err error
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("fisk: parsear certificado: %w", err)
		}
	}
	return &DigitalSignatureService{key: priv, cert: leaf}, nil
}

// Certificate devuelve el certificado con el que se firma.
func (s *DigitalSignatureService) Certificate() *x509.Certificate { return s.cert }

// Sign implementa pkg/fisk.Signer. No modifica doc: firma una copia.
func (s *DigitalSignatureService) Sign(doc *etree.Document, anchor xml.Name) ([]byte, error) {
	if doc == nil || doc.Root() == nil {
		return nil, fmt.Errorf("fisk: documento vacío")
	}
	work := doc.Copy()

	target := pkgfisk.FindFirst(work.Root(), anchor.Space, anchor.Local)
	if target == nil {
		return nil, fmt.Errorf("%w: {%s}%s", pkgfisk.ErrElementNotFound, anchor.Space, anchor.Local)
	}
	id := target.SelectAttrValue(ReferenceIDAttribute, "")
	if id == "" {
		return nil, fmt.Errorf("fisk: el elemento %s no tiene atributo %s", anchor.Local, ReferenceIDAttribute)
	}

	s.appendTemplate(target, id)

	xmlStr, err := work.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("fisk: serializar plantilla de firma: %w", err)
	}
	signer, err := signedxml.NewSigner(xmlStr)
	if err != nil {
		return nil, fmt.Errorf("fisk: crear firmador: %w", err)
	}
	signer.SetReferenceIDAttribute(ReferenceIDAttribute)

	signed, err := signer.Sign(s.key)
	if err != nil {
		return nil, fmt.Errorf("fisk: firmar: %w", err)
	}
	return []byte(signed), nil
}

// appendTemplate añade ds:Signature con SignedInfo y KeyInfo; signedxml rellena
// DigestValue y SignatureValue.
func (s *DigitalSignatureService) appendTemplate(target *etree.Element, id string) {
	sig := target.CreateElement("ds:Signature")
	sig.CreateAttr("xmlns:ds", NamespaceDS)
	sig.CreateAttr("Id", SignaturePlaceholderID)

	signedInfo := sig.CreateElement("ds:SignedInfo")
	signedInfo.CreateElement("ds:CanonicalizationMethod").CreateAttr("Algorithm", AlgExcC14N)
	signedInfo.CreateElement("ds:SignatureMethod").CreateAttr("Algorithm", AlgRSASHA256)

	ref := signedInfo.CreateElement("ds:Reference")
	ref.CreateAttr("URI", "#"+id)
	transforms := ref.CreateElement("ds:Transforms")
	transforms.CreateElement("ds:Transform").CreateAttr("Algorithm", TransformEnveloped)
	transforms.CreateElement("ds:Transform").CreateAttr("Algorithm", AlgExcC14N)
	ref.CreateElement("ds:DigestMethod").CreateAttr("Algorithm", AlgSHA256)
	ref.CreateElement("ds:DigestValue").SetText("placeholder")

	sig.CreateElement("ds:SignatureValue").SetText("placeholder")

	x509Data := sig.CreateElement("ds:KeyInfo").CreateElement("ds:X509Data")
	x509Data.CreateElement("ds:X509Certificate").SetText(base64.StdEncoding.EncodeToString(s.cert.Raw))
	issuerSerial := x509Data.CreateElement("ds:X509IssuerSerial")
	issuerSerial.CreateElement("ds:X509IssuerName").SetText(s.cert.Issuer.String())
	issuerSerial.CreateElement("ds:X509SerialNumber").SetText(s.cert.SerialNumber.String())
}

var _ pkgfisk.Signer = (*DigitalSignatureService)(nil)
