package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	appConfig "github.com/mansoorceksport/fitlog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the three calls the export bucket makes
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]http.Header
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	case r.Method == http.MethodPut && len(parts) == 1:
		f.buckets[bucket] = true
	case r.Method == http.MethodPut:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.objects[r.URL.Path] = r.Header.Clone()
		w.Header().Set("ETag", `"etag"`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func TestS3FileRepository_Upload(t *testing.T) {
	fake := &fakeS3{buckets: map[string]bool{}, objects: map[string]http.Header{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	repo, err := NewS3FileRepository(context.Background(), appConfig.S3Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    "fitlog-exports",
		PublicURL: "https://files.example.com/",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.True(t, fake.buckets["fitlog-exports"], "bucket should be created on first use")

	url, err := repo.Upload(context.Background(), []byte("workout_id\n"), "exports/u1/workouts-export-2025-01-01.csv", "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/fitlog-exports/exports/u1/workouts-export-2025-01-01.csv", url)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	headers, ok := fake.objects["/fitlog-exports/exports/u1/workouts-export-2025-01-01.csv"]
	require.True(t, ok)
	assert.Equal(t, "text/csv", headers.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="workouts-export-2025-01-01.csv"`, headers.Get("Content-Disposition"))
}

func TestS3FileRepository_ObjectURL(t *testing.T) {
	repo := &S3FileRepository{bucket: "b", publicURL: "http://minio:9000"}
	assert.Equal(t, "http://minio:9000/b/exports/x.json", repo.ObjectURL("/exports/x.json"))
}
