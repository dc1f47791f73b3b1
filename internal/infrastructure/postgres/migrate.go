package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
)

// VersionTable guarda la versión de esquema aplicada.
const VersionTable = "schema_version"

//go:embed migrations/*.sql
var migrationFiles embed.FS

func migrationsFS() (fs.FS, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones: %w", err)
	}
	return sub, nil
}

// Migrate aplica con tern las migraciones embebidas pendientes y devuelve sus nombres.
// tern toma un advisory lock, así que varias instancias arrancando a la vez no aplican dos veces el mismo script.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("adquirir conexión: %w", err)
	}
	defer conn.Release()

	m, err := migrate.NewMigrator(ctx, conn.Conn(), VersionTable)
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	fsys, err := migrationsFS()
	if err != nil {
		return nil, err
	}
	if err := m.LoadMigrations(fsys); err != nil {
		return nil, fmt.Errorf("cargar migraciones: %w", err)
	}

	var applied []string
	m.OnStart = func(_ int32, name, _, _ string) {
		applied = append(applied, name)
	}
	if err := m.Migrate(ctx); err != nil {
		return applied, fmt.Errorf("aplicar migraciones: %w", err)
	}
	return applied, nil
}
