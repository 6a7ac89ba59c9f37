package minio

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qsql/source"
)

func TestKeyAndContentType(t *testing.T) {
	s := NewStore(nil, "b", "tables/")
	assert.Equal(t, "tables/p.csv", s.key("p.csv"))
	assert.Equal(t, "p.csv", NewStore(nil, "b", "").key("p.csv"))

	assert.Equal(t, "text/csv", contentType("p.csv"))
	assert.Equal(t, "application/zstd", contentType("p.csv.zst"))
	assert.Equal(t, "application/octet-stream", contentType("p.bin"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}

// TestStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestStore_Integration(t *testing.T) {
	store, err := Dial(Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "test-qsql",
		Prefix:    "it/",
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := store.client.ListBuckets(probeCtx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := store.client.BucketExists(ctx, store.bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{}))
	}

	require.NoError(t, store.Put(ctx, "p.csv", []byte("bp\n120\n90\n")))

	tbl, err := source.LoadTable(ctx, store, "p.csv", "")
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	_, err = store.Open(ctx, "missing.csv")
	assert.ErrorIs(t, err, source.ErrNotFound)

	_ = store.client.RemoveObject(ctx, store.bucket, store.key("p.csv"), minio.RemoveObjectOptions{})
}
