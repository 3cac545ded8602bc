package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymdesk/gymdesk/internal/shared/config"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

func TestOpen_SQLiteFile(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:   "SQLite",
		Database: filepath.Join(t.TempDir(), "gymdesk.db"),
	}

	conn, err := Open(cfg, logger.NewNopLogger())
	require.NoError(t, err)

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Close())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, logger.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestInitGetClose(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:   DriverSQLite,
		Database: filepath.Join(t.TempDir(), "gymdesk.db"),
	}

	require.NoError(t, Init(cfg, logger.NewNopLogger()))
	assert.NotNil(t, Get())
	require.NoError(t, Close())
	assert.Nil(t, Get())
	assert.NoError(t, Close())
}
