package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaDefinesSnapshotTables(t *testing.T) {
	t.Parallel()

	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS scrape_snapshots")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS snapshot_players")
	assert.Contains(t, schema, "ON DELETE CASCADE")
}

func TestStatementsReferenceKnownTables(t *testing.T) {
	t.Parallel()

	for name, sql := range Statements {
		if !strings.HasPrefix(name, "snapshot_") || name == "snapshot_notify" {
			continue
		}
		assert.True(t,
			strings.Contains(sql, "scrape_snapshots") || strings.Contains(sql, "snapshot_players"),
			"statement %s", name)
	}
	assert.Contains(t, Statements["snapshot_notify"], SnapshotSavedChannel)
}
