package wger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Language: 2, Limit: 50, Timeout: 2 * time.Second})
}

func TestClient_Search(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exercise/", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"next":null,"results":[
			{"id":73,"name":"Bench Press","description":"<p>Lie on the bench.</p>","category":11,"muscles":[4],"equipment":[1,8]}
		]}`))
	})

	got, err := client.Search(context.Background(), domain.ExerciseQuery{Term: "bench", MuscleGroupID: "4"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"language": "2", "limit": "50", "name": "bench", "muscles": "4"}, gotQuery)
	require.Len(t, got, 1)
	assert.Equal(t, 73, got[0].ID)
	assert.Equal(t, "Bench Press", got[0].Name)
	assert.Equal(t, 11, got[0].Category)
	assert.Equal(t, []int{1, 8}, got[0].Equipment)
	assert.Equal(t, []int{4}, got[0].Muscles)
	assert.Equal(t, "Lie on the bench.", got[0].PlainDescription())
}

func TestClient_SearchWithoutFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("name"))
		assert.Empty(t, r.URL.Query().Get("muscles"))
		_, _ = w.Write([]byte(`{"count":0,"results":[]}`))
	})

	got, err := client.Search(context.Background(), domain.ExerciseQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{name: "rate limited", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{name: "not json", handler: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			got, err := client.Search(context.Background(), domain.ExerciseQuery{Term: "squat"})
			assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
			assert.Nil(t, got)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Config{BaseURL: srv.URL, Language: 2, Limit: 50})

	_, err := client.MuscleGroups(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestClient_MuscleGroups(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/muscle/", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":2,"results":[
			{"id":4,"name":"Pectoralis major","name_en":"Chest","is_front":true},
			{"id":12,"name":"Latissimus dorsi","name_en":"Lats","is_front":false}
		]}`))
	})

	got, err := client.MuscleGroups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.MuscleGroup{
		{ID: 4, Name: "Pectoralis major", NameEN: "Chest", IsFront: true},
		{ID: 12, Name: "Latissimus dorsi", NameEN: "Lats"},
	}, got)
}

func TestClient_Exercise(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exerciseinfo/73/":
			_, _ = w.Write([]byte(`{"id":73,"category":{"id":11,"name":"Chest"},
				"muscles":[{"id":4,"name":"Pectoralis major"}],"equipment":[{"id":1,"name":"Barbell"}],
				"translations":[
					{"name":"Bankdrücken","description":"<p>Auf der Bank.</p>","language":1},
					{"name":"Bench Press","description":"<p>Lie on the bench.</p>","language":2}
				]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	got, err := client.Exercise(context.Background(), 73)
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", got.Name)
	assert.Equal(t, 11, got.Category)
	assert.Equal(t, []int{4}, got.Muscles)
	assert.Equal(t, []int{1}, got.Equipment)

	_, err = client.Exercise(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
}
