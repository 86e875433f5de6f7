package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"purchase-control/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, endpoint string) *S3Store {
	t.Helper()
	store, err := NewS3Store(context.Background(), &config.StorageConfig{
		Bucket:         "receipts-bucket",
		Region:         "us-east-1",
		Endpoint:       endpoint,
		AccessKey:      "test",
		SecretKey:      "secret",
		FolderPrefix:   "dev/",
		SignedURLTTL:   time.Hour,
		ForcePathStyle: true,
	}, zap.NewNop())
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return store
}

func TestObjectKeyUsesPrefixAndBaseName(t *testing.T) {
	store := newTestStore(t, "http://localhost:9000")

	assert.Equal(t, "dev/receipts/1700000000000-cupom.jpg", store.objectKey("cupom.jpg"))
	assert.Equal(t, "dev/receipts/1700000000000-cupom.jpg", store.objectKey("../../etc/cupom.jpg"))
	assert.Equal(t, "dev/receipts/1700000000000-receipt", store.objectKey(""))
}

func TestSignedReadURLExpiresInOneHour(t *testing.T) {
	store := newTestStore(t, "http://localhost:9000")

	url, err := store.SignedReadURL(context.Background(), "dev/receipts/1-cupom.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/receipts-bucket/dev/receipts/1-cupom.jpg"), url)
	assert.Contains(t, url, "X-Amz-Expires=3600")
}

func TestPutSendsObjectToBucket(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)
	key, err := store.Put(context.Background(), []byte("image-bytes"), "nota.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "dev/receipts/1700000000000-nota.png", key)
	assert.Equal(t, "/receipts-bucket/"+key, gotPath)
	assert.Contains(t, gotBody, "image-bytes")
}
