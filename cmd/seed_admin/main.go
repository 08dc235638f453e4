// seed_admin crea el primer usuario admin de un emisor. Los demás usuarios los
// da de alta ese admin con POST /api/users.
//
// Uso: SEED_ADMIN_PASSWORD=... go run ./cmd/seed_admin -oib 69435151530 -email admin@primjer.hr
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/fiskal-api/internal/application/auth"
	"github.com/jhoicas/fiskal-api/internal/application/dto"
	"github.com/jhoicas/fiskal-api/internal/domain"
	"github.com/jhoicas/fiskal-api/internal/domain/entity"
	"github.com/jhoicas/fiskal-api/internal/infrastructure/postgres"
	"github.com/jhoicas/fiskal-api/pkg/config"
)

func main() {
	oib := flag.String("oib", "", "OIB del emisor")
	email := flag.String("email", "", "email del admin")
	name := flag.String("name", "", "nombre visible")
	flag.Parse()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if *oib == "" || *email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Requeridos: -oib, -email y SEED_ADMIN_PASSWORD")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
		os.Exit(1)
	}

	uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{})
	user, err := uc.RegisterUser(*oib, dto.RegisterRequest{
		Email:    *email,
		Password: password,
		Name:     *name,
		Role:     entity.RoleAdmin,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		fmt.Printf("El usuario %s ya existe, nada que hacer\n", *email)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Admin creado: %s (%s) para OIB %s\n", user.Email, user.ID, user.Oib)
}
