// seed_admin crea el primer usuario administrador.
//
// Uso: SEED_ADMIN_EMAIL=admin@planta.co SEED_ADMIN_PASSWORD=... go run ./cmd/seed_admin
// Opcional: SEED_ADMIN_NAME (por defecto "Administrador").
// Si el email ya existe no hace nada.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/control-calidad/internal/application/auth"
	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/infrastructure/postgres"
	"github.com/jhoicas/control-calidad/pkg/config"
)

func main() {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	name := os.Getenv("SEED_ADMIN_NAME")
	if name == "" {
		name = "Administrador"
	}
	if email == "" || len(password) < 8 {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD (mínimo 8 caracteres) son requeridos")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Aplicar migraciones: %v\n", err)
		os.Exit(1)
	}

	uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{Secret: cfg.JWT.Secret})
	user, err := uc.CreateUser(ctx, dto.CreateUserRequest{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     entity.RoleAdmin,
	})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		fmt.Printf("El usuario %s ya existe, nada que hacer\n", email)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear administrador: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Administrador creado: %s (%s)\n", user.Email, user.ID)
}
