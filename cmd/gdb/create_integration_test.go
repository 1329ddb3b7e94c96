package main

import (
	"context"
	"testing"

	"github.com/gamedex/gdb/internal/iodb"
	"github.com/gamedex/gdb/internal/ioschema"
	"github.com/gamedex/gdb/internal/iotesting"
	"github.com/gamedex/gdb/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: This is an integration test that requires PostgreSQL.
// See internal/iodb/operator_test.go for configuration instructions.
// Skip with: go test -short

// TestCreateCommand_Integration verifies the complete create workflow:
// connection, schema creation via GORM AutoMigrate, table existence,
// and collation settings.
func TestCreateCommand_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := iotesting.GetTestConfig()

	op := iodb.NewPgxOperator()
	err := op.Connect(ctx, &cfg.Database)
	require.NoError(t, err, "Should connect to database")
	defer op.Close()

	// Clean up any existing tables first.
	_ = op.DropAllTables(ctx)

	sm := ioschema.NewManager(op)
	err = sm.Create(ctx, false)
	require.NoError(t, err, "Schema creation should succeed")

	expectedTables := []string{
		"wiki_page_caches",
		"entity_caches",
		"platforms",
		"games",
		"genres",
		"companies",
	}
	expectedTables = append(expectedTables, schema.DerivedTables()...)

	for _, table := range expectedTables {
		exists, err := op.TableExists(ctx, table)
		require.NoError(t, err,
			"Should be able to check table existence for %s", table)
		assert.True(t, exists,
			"Table %s should exist after schema creation", table)
	}

	// Slug columns carry the "C" collation for deterministic ordering.
	query := `
		SELECT collation_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		  AND table_name = 'games'
		  AND column_name = 'slug'
	`
	var collation string
	err = op.Pool().QueryRow(ctx, query).Scan(&collation)
	require.NoError(t, err, "Should be able to query collation")
	assert.Equal(t, "C", collation,
		"Collation should be set to 'C' for games.slug")

	// Re-running create without drop must be idempotent.
	err = sm.Create(ctx, false)
	assert.NoError(t, err, "Re-creating schema should be idempotent")
}
