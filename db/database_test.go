package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeSqliteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	require.NoError(t, Initialize(Options{Driver: "sqlite", Path: path, Environment: "production"}))
	t.Cleanup(func() { _ = Close() })

	require.NoError(t, AutoMigrate(AllModels()...))
	assert.True(t, DB.Migrator().HasTable("period_scores"))
	assert.True(t, DB.Migrator().HasTable("consolidated_records"))
}

func TestInitializeUnknownDriver(t *testing.T) {
	err := Initialize(Options{Driver: "oracle"})
	assert.Error(t, err)
}
