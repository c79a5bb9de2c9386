package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, DriverSQLite, "file:connect_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"catalogs", "results", "event_log"} {
		var n int
		require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n), table)
		assert.Zero(t, n)
	}

	// schema creation is idempotent
	require.NoError(t, ensureSchema(ctx, conn, DriverSQLite))
}

func TestOpenRejectsUnknownDrivers(t *testing.T) {
	_, err := Open(context.Background(), Driver("mysql"), "")
	assert.ErrorContains(t, err, "unsupported driver")
	_, err = Open(context.Background(), DriverMemory, "")
	assert.Error(t, err)
	assert.True(t, DriverMemory.Valid())
	assert.False(t, Driver("mysql").Valid())
}
