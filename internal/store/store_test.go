package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening an existing store applies the schema idempotently.
	s, err = Open(path)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	payload := []byte(`{"backend":"pandapower","version":1}`)
	require.NoError(t, s.Put(ctx, Record{
		ID:          "a1b2",
		Name:        "baseline",
		Backend:     "pandapower",
		BreakPoints: 200,
		CreatedAt:   createdAt,
		Payload:     payload,
	}))

	rec, err := s.Get(ctx, "baseline")
	require.NoError(t, err)
	assert.Equal(t, "a1b2", rec.ID)
	assert.Equal(t, "baseline", rec.Name)
	assert.Equal(t, "pandapower", rec.Backend)
	assert.Equal(t, 200, rec.BreakPoints)
	assert.True(t, createdAt.Equal(rec.CreatedAt))
	assert.Equal(t, payload, rec.Payload)
}

func TestPut_UpsertsByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Record{ID: "v1", Name: "baseline", Backend: "pandapower", BreakPoints: 100, Payload: []byte("one")}))
	require.NoError(t, s.Put(ctx, Record{ID: "v2", Name: "baseline", Backend: "pandapower", BreakPoints: 200, Payload: []byte("two")}))

	rec, err := s.Get(ctx, "baseline")
	require.NoError(t, err)
	assert.Equal(t, "v2", rec.ID)
	assert.Equal(t, 200, rec.BreakPoints)
	assert.Equal(t, []byte("two"), rec.Payload)

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1, "upsert must replace, not duplicate")
}

func TestPut_RequiresName(t *testing.T) {
	s := openTestStore(t)

	err := s.Put(context.Background(), Record{ID: "x", Payload: []byte("p")})

	assert.Error(t, err)
}

func TestPut_StampsZeroCreatedAt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, s.Put(ctx, Record{ID: "x", Name: "stamped", Backend: "pandapower", Payload: []byte("p")}))

	rec, err := s.Get(ctx, "stamped")
	require.NoError(t, err)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.True(t, rec.CreatedAt.After(before))
}

func TestGet_Missing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_OrderedByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, s.Put(ctx, Record{ID: name, Name: name, Backend: "pandapower", Payload: []byte(name)}))
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "alpha", records[0].Name)
	assert.Equal(t, "bravo", records[1].Name)
	assert.Equal(t, "charlie", records[2].Name)
}

func TestList_Empty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}
