package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wajahatashraf/gcp-setup/internal/errors"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "gcp_created_resources.json"))
}

func TestFileStore_LoadAbsent(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Load()
	require.NoError(t, err, "absence is a valid state, never an error")
	assert.True(t, rec.Empty())
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
	}{
		{"bucket only", &Record{Buckets: []string{"automation-bucket-ab12cd34"}}},
		{
			"bucket and service",
			&Record{
				Buckets:         []string{"automation-bucket-ab12cd34"},
				CloudRunService: "svc1",
				CloudRunURL:     "https://svc1-xyz-uc.a.run.app",
			},
		},
		{
			"multiple buckets, no service",
			&Record{Buckets: []string{"b1", "b2", "b3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, store.Save(tt.rec))

			got, err := store.Load()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.rec, got); diff != "" {
				t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileStore_SaveIsAtomic(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&Record{Buckets: []string{"b1"}}))
	require.NoError(t, store.Save(&Record{Buckets: []string{"b1"}, CloudRunService: "svc1"}))

	// No temp files left behind next to the ledger.
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(store.Path()), entries[0].Name())

	// The on-disk bytes are complete, valid JSON with the documented schema.
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "buckets")
	assert.Equal(t, "svc1", raw["cloud_run_service"])
}

func TestFileStore_OptionalFieldsOmitted(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&Record{Buckets: []string{"b1"}}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "cloud_run_service")
	assert.NotContains(t, string(data), "cloud_run_url")
}

func TestFileStore_ClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&Record{Buckets: []string{"b1"}}))

	require.NoError(t, store.Clear())
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	// Clearing an absent ledger is a no-op, not an error.
	require.NoError(t, store.Clear())
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	_, err := store.Load()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeLedgerCorrupt, appErr.Code)
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()

	rec, err := store.Load()
	require.NoError(t, err)
	assert.True(t, rec.Empty())
	assert.False(t, store.Exists())

	require.NoError(t, store.Save(&Record{Buckets: []string{"b1"}}))
	require.NoError(t, store.Save(&Record{Buckets: []string{"b1"}, CloudRunService: "svc1"}))
	assert.Equal(t, 2, store.SaveCount)
	assert.True(t, store.Exists())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "svc1", got.CloudRunService)

	require.NoError(t, store.Clear())
	assert.False(t, store.Exists())
}
