package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".", cfg.App.BaseDir)
	assert.Equal(t, "livraria.db", cfg.Storage.FileName)
	assert.Equal(t, 5*time.Second, cfg.Storage.BusyTimeout)
	assert.Equal(t, "backup_livraria_", cfg.Backup.Prefix)
	assert.Equal(t, 5, cfg.Backup.Retention)
	assert.Equal(t, "livros_exportados.csv", cfg.CSV.DefaultFile)
	assert.Equal(t, DefaultHeaders, cfg.CSV.Headers)
	assert.Equal(t, "R$", cfg.Display.CurrencySymbol)
	require.NoError(t, validate(cfg))
}

func TestConfig_Paths(t *testing.T) {
	cfg := Default()
	cfg.App.BaseDir = filepath.Join("srv", "loja")

	assert.Equal(t, filepath.Join("srv", "loja", "data"), cfg.DataDir())
	assert.Equal(t, filepath.Join("srv", "loja", "backups"), cfg.BackupsDir())
	assert.Equal(t, filepath.Join("srv", "loja", "exports"), cfg.ExportsDir())
	assert.Equal(t, filepath.Join("srv", "loja", "data", "livraria.db"), cfg.DataFile())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "livraria.yaml")
	content := `
app:
  base_dir: /tmp/loja
backup:
  retention: 3
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/loja", cfg.App.BaseDir)
	assert.Equal(t, 3, cfg.Backup.Retention)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep defaults
	assert.Equal(t, "livraria.db", cfg.Storage.FileName)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "livraria.yaml")
	require.NoError(t, os.WriteFile(file, []byte("backup:\n  retention: 3\n"), 0o644))

	t.Setenv("LIVRARIA_BACKUP_RETENTION", "7")
	t.Setenv("LIVRARIA_APP_BASE_DIR", dir)

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Backup.Retention)
	assert.Equal(t, dir, cfg.App.BaseDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero retention", "backup:\n  retention: 0\n"},
		{"nested file name", "storage:\n  file_name: sub/livraria.db\n"},
		{"short header list", "csv:\n  headers: [ID, Titulo]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "livraria.yaml")
			require.NoError(t, os.WriteFile(file, []byte(tt.yaml), 0o644))

			_, err := Load(file)
			assert.Error(t, err)
		})
	}
}
