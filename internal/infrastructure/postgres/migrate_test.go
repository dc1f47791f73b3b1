package postgres

import (
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tern carga solo archivos <secuencia>_<nombre>.sql con secuencias consecutivas desde 1.
var migrationName = regexp.MustCompile(`^(\d+)_.+\.sql$`)

func TestMigrationsFS_SecuenciasConsecutivas(t *testing.T) {
	fsys, err := migrationsFS()
	require.NoError(t, err)

	entries, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "001_init.sql", entries[0].Name())

	for i, e := range entries {
		m := migrationName.FindStringSubmatch(e.Name())
		require.NotNil(t, m, e.Name())
		seq, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.Equal(t, i+1, seq, e.Name())
	}
}

func TestMigracionInicial_RestriccionesDelLibro(t *testing.T) {
	fsys, err := migrationsFS()
	require.NoError(t, err)
	script, err := fs.ReadFile(fsys, "001_init.sql")
	require.NoError(t, err)
	sql := string(script)

	assert.True(t, strings.Contains(sql, "CHECK (amount <> 0)"))
	assert.True(t, strings.Contains(sql, "CHECK ((reversal_of_id IS NULL) = (amount > 0))"))
	assert.True(t, strings.Contains(sql, "version         INTEGER NOT NULL DEFAULT 0"))
	assert.False(t, strings.Contains(sql, "{{"), "tern procesa los scripts como plantillas")
}
