package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionFromFilename(t *testing.T) {
	assert.Equal(t, "001", VersionFromFilename("migrations/001_init.sql"))
	assert.Equal(t, "010", VersionFromFilename("010_add_payments_index.sql"))
	assert.Equal(t, "seed.sql", VersionFromFilename("seed.sql"))
}

func TestPendingFilesOrdersSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md", "010_c.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := PendingFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001_a.sql"),
		filepath.Join(dir, "002_b.sql"),
		filepath.Join(dir, "010_c.sql"),
	}, files)
}

func TestPendingFilesMissingDir(t *testing.T) {
	_, err := PendingFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRepositoryMigrationsPresent(t *testing.T) {
	files, err := PendingFiles(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001", VersionFromFilename(files[0]))
}
