package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitlog/internal/config"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/infrastructure/wger"
	"github.com/mansoorceksport/fitlog/internal/repository"
	"github.com/mansoorceksport/fitlog/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB spins up a fresh MongoDB container and returns the database connection
// along with a cleanup function. It skips when Docker is unavailable.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("fitlog_test"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// SetupRedisStore returns a key-value store backed by miniredis
func SetupRedisStore(t *testing.T) (domain.KeyValueStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewRedisKeyValueStore(client), mr
}

// FlakyStore fails writes on demand
type FlakyStore struct {
	domain.KeyValueStore
	failWrites atomic.Bool
}

func (s *FlakyStore) FailWrites(fail bool) {
	s.failWrites.Store(fail)
}

func (s *FlakyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.failWrites.Load() {
		return fmt.Errorf("%w: write refused", domain.ErrStorageUnavailable)
	}
	return s.KeyValueStore.Set(ctx, key, value, ttl)
}

// FakeWger serves the subset of the wger API the catalog client calls
type FakeWger struct {
	Server *httptest.Server
	down   atomic.Bool
}

// SetDown makes catalog listings answer 503
func (f *FakeWger) SetDown(down bool) {
	f.down.Store(down)
}

func NewFakeWger(t *testing.T) *FakeWger {
	t.Helper()
	f := &FakeWger{}
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("/api/v2/exercise/", func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("name") == "nothing" {
			write(w, `{"count":0,"results":[]}`)
			return
		}
		write(w, `{"count":1,"results":[{"id":73,"name":"Bench Press","description":"<p>Lie on the <b>bench</b> and press.</p>","category":11,"muscles":[4],"equipment":[1]}]}`)
	})
	mux.HandleFunc("/api/v2/muscle/", func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		write(w, `{"count":1,"results":[{"id":4,"name":"Pectoralis major","name_en":"Chest","is_front":true}]}`)
	})
	mux.HandleFunc("/api/v2/exerciseinfo/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/exerciseinfo/73/" {
			http.NotFound(w, r)
			return
		}
		write(w, `{"id":73,"category":{"id":11},"muscles":[{"id":4}],"translations":[{"name":"Bench Press","description":"Press it.","language":2}]}`)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeWger) Client() *wger.Client {
	return wger.NewClient(wger.Config{
		BaseURL:  f.Server.URL + "/api/v2",
		Language: 2,
		Limit:    50,
		Timeout:  2 * time.Second,
	})
}

// TestConfig is the minimal configuration NewApp needs
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Timezone = "UTC"
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.JWT.Expiry = time.Hour
	cfg.Auth.AutoRegister = true
	return cfg
}

// Client drives a Fiber app through app.Test
type Client struct {
	t   *testing.T
	app *fiber.App
}

func NewClient(t *testing.T, app *fiber.App) *Client {
	return &Client{t: t, app: app}
}

// Do sends body as JSON and returns the raw response
func (c *Client) Do(method, path, token string, body interface{}, headers ...string) *http.Response {
	c.t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		require.NoError(c.t, err)
		bodyReader = bytes.NewReader(jsonBytes)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	return resp
}

// JSON sends the request and decodes the response envelope
func (c *Client) JSON(method, path, token string, body interface{}, headers ...string) (int, map[string]interface{}) {
	c.t.Helper()
	resp := c.Do(method, path, token, body, headers...)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// Login logs in (auto-registering) and returns the access token
func (c *Client) Login(email, password string) string {
	c.t.Helper()
	status, body := c.JSON("POST", "/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(c.t, fiber.StatusOK, status, body)
	token := body["data"].(map[string]interface{})["token"].(string)
	require.NotEmpty(c.t, token)
	return token
}

// NewTestApp builds the app over store with the fake catalog
func NewTestApp(t *testing.T, store domain.KeyValueStore, catalog domain.ExerciseCatalog) *Client {
	t.Helper()
	app := server.NewApp(server.AppDependencies{
		Config:  TestConfig(),
		Store:   store,
		Catalog: catalog,
	})
	return NewClient(t, app)
}
