package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erp/ledgercore/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add bank accounts", "add_bank_accounts"},
		{"Add-Ledger-Index", "add_ledger_index"},
		{"ADD__SERIAL__UNITS", "add_serial_units"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	first, err := CreateMigration(dir, "ledger core", "initial schema")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, "000001_ledger_core.up.sql", filepath.Base(first.UpPath))
	assert.Equal(t, "000001_ledger_core.down.sql", filepath.Base(first.DownPath))

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "initial schema")
	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	second, err := CreateMigration(dir, "add bank index", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000002_add_index.up.sql",
		"000002_add_index.down.sql",
		"000001_ledger_core.up.sql",
		"000001_ledger_core.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("--"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	got, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_ledger_core", "000002_add_index"}, got)

	got, err = ListMigrations(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddedSchemaHasPairs(t *testing.T) {
	up, err := migrations.FS.ReadFile("000001_ledger_core.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CHECK (quantity >= 0)")
	assert.Contains(t, string(up), "idx_serial_unit_key")

	_, err = migrations.FS.ReadFile("000001_ledger_core.down.sql")
	require.NoError(t, err)
}
