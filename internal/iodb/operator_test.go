package iodb_test

import (
	"context"
	"testing"

	"github.com/gamedex/gdb/internal/iodb"
	"github.com/gamedex/gdb/internal/iotesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: These are integration tests that require PostgreSQL.
//
// Connection parameters come from the regular GDB_DATABASE_*
// environment variables; the database name is always forced to
// "gamedex_test" for safety.
//
// Docker with default credentials:
//   docker run -d --name gdb-test -e POSTGRES_PASSWORD=postgres \
//     -p 5432:5432 postgres:16
//
// Skip in environments without PostgreSQL:
//   go test -short

func TestPgxOperator_Connect(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	op := iodb.NewPgxOperator()
	ctx := context.Background()

	err := op.Connect(ctx, iotesting.GetTestDatabaseConfig())
	require.NoError(t, err, "Connect should succeed with valid config")
	defer op.Close()

	exists, err := op.TableExists(ctx, "nonexistent_table")
	assert.NoError(t, err, "Should be able to execute commands after Connect")
	assert.False(t, exists)
}

func TestPgxOperator_Connect_InvalidHost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	op := iodb.NewPgxOperator()
	ctx := context.Background()

	cfg := iotesting.GetTestDatabaseConfig()
	cfg.Host = "invalid-host-that-does-not-exist"

	err := op.Connect(ctx, cfg)
	assert.Error(t, err, "Connect should fail with invalid host")
}

func TestPgxOperator_TableExists(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	op := iodb.NewPgxOperator()
	ctx := context.Background()

	err := op.Connect(ctx, iotesting.GetTestDatabaseConfig())
	require.NoError(t, err)
	defer op.Close()

	_, _ = op.Pool().Exec(ctx,
		"DROP TABLE IF EXISTS test_table_exists CASCADE")

	exists, err := op.TableExists(ctx, "test_table_exists")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = op.Pool().Exec(ctx,
		"CREATE TABLE test_table_exists (id INT)")
	require.NoError(t, err)
	defer op.Pool().Exec(ctx,
		"DROP TABLE IF EXISTS test_table_exists CASCADE")

	exists, err = op.TableExists(ctx, "test_table_exists")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPgxOperator_DropAllTables(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	op := iodb.NewPgxOperator()
	ctx := context.Background()

	err := op.Connect(ctx, iotesting.GetTestDatabaseConfig())
	require.NoError(t, err)
	defer op.Close()

	_, err = op.Pool().Exec(ctx,
		"CREATE TABLE IF NOT EXISTS test_drop_me (id INT)")
	require.NoError(t, err)

	err = op.DropAllTables(ctx)
	require.NoError(t, err)

	exists, err := op.TableExists(ctx, "test_drop_me")
	require.NoError(t, err)
	assert.False(t, exists)
}
