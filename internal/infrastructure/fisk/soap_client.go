package fisk

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// Tamaño máximo de respuesta aceptado del CIS.
const maxReplyBytes = 4 << 20

// ── Implementación SOAP ────────────────────────────────────────────────────────

// SOAPClient implementa pkg/fisk.Transport sobre HTTPS contra el CIS.
type SOAPClient struct {
	httpClient *http.Client
	url        string
	log        zerolog.Logger
}

// SOAPClientConfig opciones del cliente.
type SOAPClientConfig struct {
	Env     string         // demo o prod; determina la URL
	URL     string         // opcional: sobreescribe la URL del entorno
	RootCAs *x509.CertPool // almacén TLS; nil = raíces del sistema
	Timeout time.Duration  // por defecto 30 s
}

// NewSOAPClient construye el cliente. El CIS suele responder en menos de 2 s,
// el timeout cubre las caídas de red.
func NewSOAPClient(cfg SOAPClientConfig, log zerolog.Logger) *SOAPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	url := cfg.URL
	if url == "" {
		url = pkgfisk.Endpoint(cfg.Env)
	}
	return &SOAPClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: cfg.RootCAs, MinVersion: tls.VersionTLS12},
			},
		},
		url: url,
		log: log.With().Str("component", "fisk_soap").Logger(),
	}
}

// URL devuelve el endpoint configurado.
func (c *SOAPClient) URL() string { return c.url }

// Send publica el sobre y devuelve el cuerpo crudo de la respuesta.
func (c *SOAPClient) Send(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("soap: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("SOAPAction", c.url)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("soap: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("soap: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("soap: leer respuesta: %w", err)
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("duracion", time.Since(start)).
		Msg("respuesta CIS")

	if resp.StatusCode != http.StatusOK && !strings.Contains(resp.Header.Get("Content-Type"), "text/xml") {
		return nil, &pkgfisk.TransportError{Status: resp.StatusCode, Reason: reason(resp)}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("soap: parsear respuesta: %w", err)
	}
	if fault := pkgfisk.FindFault(doc.Root()); fault != nil {
		return nil, fault
	}
	return raw, nil
}

func reason(resp *http.Response) string {
	if r := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); r != "" {
		return r
	}
	return http.StatusText(resp.StatusCode)
}

var _ pkgfisk.Transport = (*SOAPClient)(nil)
