package snapshot

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/xi-fantasy/internal/config"
	"github.com/albapepper/xi-fantasy/internal/db"
	"github.com/albapepper/xi-fantasy/internal/provider"
	"github.com/albapepper/xi-fantasy/internal/scraper"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := db.New(context.Background(), &config.Config{DatabaseURL: url, DBPoolMinConns: 1, DBPoolMaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool.Pool
}

func TestPGStoreRoundTrip(t *testing.T) {
	pool := testPool(t)
	store := NewPGStore(pool, nil)
	ctx := context.Background()

	in := scraper.Result{Records: []provider.PlayerRecord{
		{Team: "Betis", Name: "Isco", StartProbability: 90, ImageURL: "https://img/isco.png"},
		{Team: "Girona", Name: "Stuani", StartProbability: 40},
	}, Report: scraper.Report{TeamsOK: 2}}

	id, err := store.Save(ctx, in)
	require.NoError(t, err)

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got.Report.SnapshotID)
	assert.Equal(t, in.Records, got.Records)

	_, err = store.Prune(ctx, 1)
	require.NoError(t, err)
	got, err = store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got.Report.SnapshotID)
}
