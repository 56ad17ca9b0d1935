package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"item-catalog/internal/domain"
)

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestInitSchema_Idempotent(t *testing.T) {
	db, err := NewGorm(MemoryOpts(t.Name()))
	require.NoError(t, err)

	require.NoError(t, InitSchema(db))
	require.NoError(t, InitSchema(db))

	for _, table := range []string{"users", "category", "item"} {
		require.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestResetSchema_DropsRows(t *testing.T) {
	db, err := NewGorm(MemoryOpts(t.Name()))
	require.NoError(t, err)
	require.NoError(t, InitSchema(db))
	require.NoError(t, db.Create(&domain.User{Name: "a", Email: "a@example.com"}).Error)

	require.NoError(t, ResetSchema(db))

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("jdbc:mysql://root:pw@127.0.0.1:3306/catalog", "", "secret")
	require.True(t, strings.HasPrefix(got, "root:secret@tcp(127.0.0.1:3306)/catalog?"), got)
	require.Contains(t, got, "parseTime=true")
	require.Contains(t, got, "charset=utf8mb4")

	raw := "u:p@tcp(db:3306)/x"
	require.Equal(t, raw, normalizeMySQLDSN(raw, "", ""))
}

func TestEnsureDirForSQLite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ensureDirForSQLite("file:"+dir+"/nested/catalog.db?_foreign_keys=on"))
	require.DirExists(t, dir+"/nested")
	require.NoError(t, ensureDirForSQLite(":memory:"))
}
