package fiskalizacija

import (
	"crypto"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	domainfisk "github.com/jhoicas/fiskal-api/internal/domain/fisk"
	infrafisk "github.com/jhoicas/fiskal-api/internal/infrastructure/fisk"
	"github.com/jhoicas/fiskal-api/internal/infrastructure/fisk/signer"
	"github.com/jhoicas/fiskal-api/pkg/config"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// Session reúne los colaboradores de un entorno CIS. Se construye una vez y se
// pasa a cada petición; Transport, Signer y Verifier son seguros para uso concurrente.
type Session struct {
	Env       string
	Transport pkgfisk.Transport
	Signer    pkgfisk.Signer   // nil = se envía sin firmar
	Verifier  pkgfisk.Verifier // nil = las respuestas firmadas se descartan
	ZKI       *domainfisk.ZKICalculator

	// StrictSignatures convierte una respuesta firmada sin verificador en ErrUnverifiedReply.
	StrictSignatures bool

	Metrics *Metrics
	Log     zerolog.Logger
}

func (s *Session) logger() *zerolog.Logger {
	return &s.Log
}

// NewSessionFromConfig carga certificado, almacén de confianza y cliente SOAP.
func NewSessionFromConfig(cfg config.FiskConfig, log zerolog.Logger, metrics *Metrics) (*Session, error) {
	env := cfg.Env
	if env != pkgfisk.EnvProd {
		env = pkgfisk.EnvDemo
	}

	cert, err := signer.LoadCertificate(cfg.CertPath, cfg.CertKeyPath, cfg.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("fiskalizacija: cargar certificado: %w", err)
	}
	sig, err := signer.NewDigitalSignatureService(cert)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PrivateKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("fiskalizacija: la llave privada no permite firmar")
	}

	s := &Session{
		Env:              env,
		Signer:           sig,
		ZKI:              domainfisk.NewZKICalculator(key),
		StrictSignatures: cfg.StrictSignatures,
		Metrics:          metrics,
		Log:              log.With().Str("component", "fiskalizacija").Str("env", env).Logger(),
	}

	caPath := cfg.CADemo
	if env == pkgfisk.EnvProd {
		caPath = cfg.CAProd
	}
	clientCfg := infrafisk.SOAPClientConfig{
		Env:     env,
		URL:     cfg.URL,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if caPath != "" {
		bundle, err := signer.LoadCABundle(caPath)
		if err != nil {
			return nil, err
		}
		clientCfg.RootCAs = signer.CertPool(bundle)
		if !(env == pkgfisk.EnvDemo && cfg.SkipVerifyDemo) {
			s.Verifier = signer.NewSignatureVerifier(bundle)
		}
	} else if env == pkgfisk.EnvProd || !cfg.SkipVerifyDemo {
		log.Warn().Str("env", env).Msg("sin almacén de confianza: las respuestas firmadas no se verificarán")
	}
	s.Transport = infrafisk.NewSOAPClient(clientCfg, log)
	return s, nil
}
