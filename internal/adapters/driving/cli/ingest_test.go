package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	content := "Product Name,Category,Weight,USP,Price,Link,Description\n" +
		"Tata Sampann Cashew,Dry Fruits,200g,Whole,299,https://example.com/kaju,Creamy cashews\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [catalog.csv]", ingestCmd.Use)
	assert.Contains(t, ingestCmd.Long, "Product Name")
	assert.NotNil(t, ingestCmd.Flags().Lookup("watch"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("no-progress"))
}

func TestIngestCmd_IngestsAndFlushesCache(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.stats = &domain.IngestStats{Cards: 3, Passages: 9, Skipped: 1}
	path := writeCatalog(t)

	out, err := executeCommand("ingest", "--no-progress", path)

	require.NoError(t, err)
	assert.Equal(t, []string{path}, ts.ingest.paths)
	assert.Contains(t, out, "Ingested 3 products (9 passages), skipped 1 rows")
	assert.Equal(t, 1, ts.cache.flushes)
}

func TestIngestCmd_ProgressBar(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.stats = &domain.IngestStats{Cards: 2, Passages: 2}

	out, err := executeCommand("ingest", writeCatalog(t))

	require.NoError(t, err)
	assert.Contains(t, out, "Embedding passages")
	assert.Contains(t, out, "Ingested 2 products (2 passages)")
	assert.NotContains(t, out, "skipped")
}

func TestIngestCmd_CacheFlushFailureIsAWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.cache.flushErr = errors.New("redis down")

	out, err := executeCommand("ingest", "--no-progress", writeCatalog(t))

	require.NoError(t, err)
	assert.Contains(t, out, "could not flush result cache: redis down")
}

func TestIngestCmd_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		_, err := executeCommand("ingest", filepath.Join(t.TempDir(), "nope.csv"))

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Empty(t, ts.ingest.paths)
	})

	t.Run("ingest failure", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.ingest.err = domain.ErrInvalidInput

		_, err := executeCommand("ingest", "--no-progress", writeCatalog(t))

		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "ingest failed")
		assert.Zero(t, ts.cache.flushes)
	})

	t.Run("not configured", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		ingestFactory = nil

		_, err := executeCommand("ingest", writeCatalog(t))

		assert.EqualError(t, err, "ingest service not configured")
	})
}

func TestWatchFile_CallsOnChange(t *testing.T) {
	path := writeCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 20*time.Millisecond, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()

	// Keep writing until the watcher is attached and has fired.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("Product Name,Category\nKaju,Dry Fruits\n"), 0o600)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}

func TestWatchFile_IgnoresSiblings(t *testing.T) {
	path := writeCatalog(t)
	sibling := filepath.Join(filepath.Dir(path), "other.csv")
	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(sibling, []byte("x"), 0o600)
		time.Sleep(30 * time.Millisecond)
	}

	require.NoError(t, <-done)
	assert.Zero(t, calls.Load())
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	err := watchFile(context.Background(), filepath.Join(t.TempDir(), "gone", "catalog.csv"), time.Millisecond,
		func(context.Context) error { return nil })

	assert.Error(t, err)
}
