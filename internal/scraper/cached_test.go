package scraper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/xi-fantasy/internal/cache"
	"github.com/albapepper/xi-fantasy/internal/provider"
)

type countingSource struct {
	calls   atomic.Int32
	records []provider.PlayerRecord
}

func (s *countingSource) Scrape(context.Context, []provider.TeamSource) Result {
	s.calls.Add(1)
	return Result{Records: s.records, Report: Report{TeamsOK: 1, Records: len(s.records)}}
}

func TestCachedServesFromStore(t *testing.T) {
	t.Parallel()

	store := cache.New(true)
	defer store.Close()
	src := &countingSource{records: []provider.PlayerRecord{{Team: "Betis", Name: "Isco", StartProbability: 90}}}
	c := NewCached(src, store, time.Minute, nil, nil)
	teams := []provider.TeamSource{{Team: "Betis", URL: "b"}}
	ctx := context.Background()

	first := c.Scrape(ctx, teams)
	assert.False(t, first.Report.Cached)

	second := c.Scrape(ctx, teams)
	assert.True(t, second.Report.Cached)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, int32(1), src.calls.Load())

	require.NoError(t, c.Invalidate(ctx, teams))
	third := c.Scrape(ctx, teams)
	assert.False(t, third.Report.Cached)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedDoesNotStoreEmptyResults(t *testing.T) {
	t.Parallel()

	store := cache.New(true)
	defer store.Close()
	src := &countingSource{}
	c := NewCached(src, store, time.Minute, nil, nil)
	teams := []provider.TeamSource{{Team: "A", URL: "a"}}

	c.Scrape(context.Background(), teams)
	c.Scrape(context.Background(), teams)
	assert.Equal(t, int32(2), src.calls.Load())
}

type staleSource struct{ calls atomic.Int32 }

func (s *staleSource) Scrape(context.Context, []provider.TeamSource) Result {
	s.calls.Add(1)
	return Result{
		Records: []provider.PlayerRecord{{Team: "A", Name: "Old", StartProbability: 50}},
		Report:  Report{Stale: true, SnapshotID: "old"},
	}
}

func TestCachedDoesNotStoreStaleResults(t *testing.T) {
	t.Parallel()

	store := cache.New(true)
	defer store.Close()
	src := &staleSource{}
	c := NewCached(src, store, time.Minute, nil, nil)
	teams := []provider.TeamSource{{Team: "A", URL: "a"}}

	first := c.Scrape(context.Background(), teams)
	assert.True(t, first.Report.Stale)
	second := c.Scrape(context.Background(), teams)
	assert.False(t, second.Report.Cached)
	assert.Equal(t, int32(2), src.calls.Load())
}

// cancellingFetcher cancels the requesting client's context after serving
// its first page, like a caller that disconnects mid-scrape.
type cancellingFetcher struct {
	fakeFetcher
	cancel context.CancelFunc
}

func (f *cancellingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := f.fakeFetcher.Fetch(ctx, url)
	f.cancel()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return body, err
}

func TestCachedScrapeSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := &cancellingFetcher{
		fakeFetcher: fakeFetcher{pages: map[string]string{
			"a": page("Pedri", "85%"),
			"b": page("Isco", "90%"),
			"c": page("Stuani", "40%"),
		}},
		cancel: cancel,
	}
	store := cache.New(true)
	defer store.Close()
	c := NewCached(New(f, Options{Delay: -1}, nil, nil), store, time.Minute, nil, nil)
	teams := []provider.TeamSource{{Team: "A", URL: "a"}, {Team: "B", URL: "b"}, {Team: "C", URL: "c"}}

	first := c.Scrape(ctx, teams)
	require.Error(t, ctx.Err())
	assert.Len(t, first.Records, 3)
	assert.Zero(t, first.Report.TeamsFailed)

	second := c.Scrape(context.Background(), teams)
	assert.True(t, second.Report.Cached)
	assert.Len(t, second.Records, 3)
}

func TestKeyDependsOnTeams(t *testing.T) {
	t.Parallel()

	a := []provider.TeamSource{{Team: "A", URL: "a"}, {Team: "B", URL: "b"}}
	b := []provider.TeamSource{{Team: "B", URL: "b"}, {Team: "A", URL: "a"}}
	assert.Equal(t, Key(a), Key(a))
	assert.NotEqual(t, Key(a), Key(b))
	assert.Contains(t, Key(a), "scrape:")
}
