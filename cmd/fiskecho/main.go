// Diagnóstico del certificado FINA y de la conexión con el CIS.
//
//	go run ./cmd/fiskecho -poruka "proba"
package main

import (
	"context"
	"crypto/x509"
	"flag"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/jhoicas/fiskal-api/internal/application/fiskalizacija"
	"github.com/jhoicas/fiskal-api/internal/infrastructure/fisk/signer"
	"github.com/jhoicas/fiskal-api/pkg/config"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
	"github.com/jhoicas/fiskal-api/pkg/logger"
)

var oibInSubject = regexp.MustCompile(`\d{11}`)

func main() {
	poruka := flag.String("poruka", "proba", "texto que el CIS debe devolver")
	soloCert := flag.Bool("cert", false, "solo comprobar el certificado, sin llamar al CIS")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("configuración", err)
	}
	log := logger.New(logger.Config{Env: "development", Level: cfg.Log.Level})

	fmt.Println("🔍 DIAGNÓSTICO FISKALIZACIJA")
	fmt.Println("----------------------------")
	fmt.Printf("🌐 Entorno CIS: %s\n", cfg.Fisk.Env)
	fmt.Printf("📂 Certificado: %s\n", cfg.Fisk.CertPath)

	cert, err := signer.LoadCertificate(cfg.Fisk.CertPath, cfg.Fisk.CertKeyPath, cfg.Fisk.CertPassword)
	if err != nil {
		fail("certificado o contraseña", err)
	}
	leaf := cert.Leaf
	if leaf == nil && len(cert.Certificate) > 0 {
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			fail("certificado X.509", err)
		}
	}
	fmt.Printf("✅ Sujeto: %s\n", leaf.Subject.String())
	fmt.Printf("   Emisor: %s\n", leaf.Issuer.String())
	fmt.Printf("   Válido hasta: %s\n", leaf.NotAfter.Format(time.DateOnly))
	if oib := oibInSubject.FindString(leaf.Subject.String()); oib != "" {
		fmt.Printf("   OIB: %s (válido: %t)\n", oib, pkgfisk.ValidateOIB(oib) == nil)
	}
	if time.Now().After(leaf.NotAfter) {
		fmt.Println("⚠️  El certificado está vencido")
	}
	if *soloCert {
		return
	}

	session, err := fiskalizacija.NewSessionFromConfig(cfg.Fisk, log.Component("fiskecho"), nil)
	if err != nil {
		fail("sesión CIS", err)
	}
	req, err := fiskalizacija.NewEchoRequest(session, *poruka)
	if err != nil {
		fail("petición Echo", err)
	}

	fmt.Printf("\n📡 Echo → %s\n", *poruka)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	text, ok, err := req.Execute(ctx)
	if err != nil {
		fail("intercambio", err)
	}
	if !ok {
		fmt.Println("❌ Sin respuesta válida del CIS")
		for _, g := range req.Errors() {
			fmt.Printf("   %s\n", g)
		}
		os.Exit(1)
	}
	fmt.Printf("✨ Respuesta: %s\n", text)
}

func fail(paso string, err error) {
	fmt.Printf("\n❌ ERROR (%s): %v\n", paso, err)
	os.Exit(1)
}
