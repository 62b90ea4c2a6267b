package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "restoreviews/internal/adapters/http_server"
	"restoreviews/internal/app"
	"restoreviews/internal/domain"
)

type fakeSource struct {
	restaurants []map[string]any
	reviews     []map[string]any
}

func (f *fakeSource) ListRestaurants(ctx context.Context) ([]map[string]any, error) {
	return f.restaurants, nil
}

func (f *fakeSource) ListReviews(ctx context.Context) ([]map[string]any, error) {
	return f.reviews, nil
}

func newSource() *fakeSource {
	return &fakeSource{
		restaurants: []map[string]any{
			{"id": 1, "name": "Пушкин"},
			{"id": 2, "name": "Гусь"},
		},
		reviews: []map[string]any{
			{"id": 10, "restaurant_id": 1, "user_name": "Ира", "comment": "Вкусно", "rating": 5, "created_at": "2024-03-05T10:00:00Z", "response": "Спасибо", "likes": 3},
			{"id": 11, "restaurant_id": 1, "comment": "Долго", "rating": 3, "created_at": "2024-02-01"},
			{"id": 12, "restaurant_id": 2, "comment": "Норм", "rating": "4", "likes": []any{"a", "b"}},
			{"id": 13, "restaurant_id": 2, "rating": 1},
		},
	}
}

func newServer(t *testing.T, loaded bool) (*httptest.Server, *app.Loader) {
	t.Helper()
	store := app.NewStore()
	loader := app.NewLoader(newSource(), nil, store, nil)
	if loaded {
		if _, err := loader.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Q:              app.NewQueryService(store, nil, time.Minute),
		Loader:         loader,
		RefreshTimeout: 5 * time.Second,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, loader
}

func TestHealthz(t *testing.T) {
	ts, _ := newServer(t, false)
	res, err := http.Get(ts.URL + "/healthz")
	if err != nil || res.StatusCode != 200 {
		t.Fatalf("healthz: %v %v", err, res)
	}
}

func TestDashboard_NotReadyThenReady(t *testing.T) {
	ts, _ := newServer(t, false)
	res, err := http.Get(ts.URL + "/v1/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content-type = %q", ct)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/dashboard/refresh?wait=true", nil)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d", res.StatusCode)
	}

	res, err = http.Get(ts.URL + "/v1/dashboard?sort=likes")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var v domain.DashboardView
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Reviews != 3 || v.Dropped != 1 || len(v.Aggregates) != 2 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if v.Aggregates[0].Name != "Пушкин" || v.Aggregates[0].TotalLikes != 3 {
		t.Fatalf("likes order: %+v", v.Aggregates)
	}
}

func TestDashboard_BadSortAndETag(t *testing.T) {
	ts, _ := newServer(t, true)

	res, _ := http.Get(ts.URL + "/v1/dashboard?sort=stars")
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}

	res, _ = http.Get(ts.URL + "/v1/dashboard")
	res.Body.Close()
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/dashboard", nil)
	req.Header.Set("If-None-Match", etag)
	res, _ = http.DefaultClient.Do(req)
	res.Body.Close()
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", res.StatusCode)
	}
}

func TestReviews_Filter(t *testing.T) {
	ts, _ := newServer(t, true)

	res, err := http.Get(ts.URL + "/v1/reviews?restaurant=%D0%BF%D1%83%D1%88%D0%BA%D0%B8%D0%BD&responded=true")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var out struct {
		Total   int             `json:"total"`
		Reviews []domain.Review `json:"reviews"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 1 || out.Reviews[0].AuthorName != "Ира" || out.Reviews[0].CreatedAtDisplay != "05.03.2024" {
		t.Fatalf("unexpected: %+v", out)
	}

	bad, _ := http.Get(ts.URL + "/v1/reviews?responded=maybe")
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", bad.StatusCode)
	}
}

func TestExportCSV(t *testing.T) {
	ts, _ := newServer(t, true)
	res, err := http.Get(ts.URL + "/v1/reviews/export.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content-type = %q", ct)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(body), "\ufeff")), "\n")
	if len(lines) != 4 || lines[0] != "restaurant,author,rating,text,date,responded" {
		t.Fatalf("unexpected csv: %q", lines)
	}
}

func TestRefresh_Async(t *testing.T) {
	ts, loader := newServer(t, false)
	res, err := http.Post(ts.URL+"/v1/dashboard/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", res.StatusCode)
	}
	deadline := time.Now().Add(2 * time.Second)
	for loader.Store().State().Snapshot == nil {
		if time.Now().After(deadline) {
			t.Fatalf("async refresh never published a snapshot")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
