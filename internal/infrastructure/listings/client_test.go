package listings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		URL:       server.URL,
		APIKey:    "secret",
		MediaBase: "https://re24.com.ua/",
	}, zap.NewNop())
}

func TestSearch_ParsesItemsAndCount(t *testing.T) {
	var gotPayload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": 101, "title": "2-кімн. квартира", "price": 45000,
				 "address": "вул. Сумська, 12", "area_total": "54 м²",
				 "rooms": "2", "floor": 3, "floors_total": 9,
				 "url": "https://re24.com.ua/101"}
			],
			"count": 12
		}`))
	})

	result := client.Search(context.Background(), map[string]any{"rooms_in": []int{2}, "limit": 3})

	require.Len(t, result.Items, 1)
	assert.Equal(t, 12, result.Total)
	assert.NotEmpty(t, result.RequestID)
	assert.NotEmpty(t, result.Raw)

	l := result.Items[0]
	assert.Equal(t, int64(101), l.ID)
	assert.Equal(t, "2-кімн. квартира", l.Title)
	assert.Equal(t, "45000", l.Price)
	assert.Equal(t, "вул. Сумська, 12", l.Address)
	assert.Equal(t, 3, l.Floor)
	assert.Equal(t, 9, l.FloorsTotal)

	assert.Equal(t, "secret", gotPayload["key"], "API key payload ichiga qo'shilishi kerak")
}

func TestSearch_DataAndTotalAliases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"id": 1}, {"id": 2}], "total": 7}`))
	})

	result := client.Search(context.Background(), map[string]any{})
	require.Len(t, result.Items, 2)
	assert.Equal(t, 7, result.Total)
}

func TestSearch_TotalDefaultsToItemCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"id": 1}]}`))
	})

	result := client.Search(context.Background(), map[string]any{})
	assert.Equal(t, 1, result.Total)
}

func TestSearch_NonOKStatusDegradesToEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	result := client.Search(context.Background(), map[string]any{})
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
	assert.NotEmpty(t, result.RequestID)
}

func TestSearch_MalformedBodyDegradesToEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	})

	result := client.Search(context.Background(), map[string]any{})
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
}

func TestSearch_NetworkErrorDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(Config{URL: server.URL}, zap.NewNop())
	server.Close()

	result := client.Search(context.Background(), map[string]any{})
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
}

func TestToListing_PhotoVariants(t *testing.T) {
	client := NewClient(Config{MediaBase: "https://re24.com.ua/"}, zap.NewNop())

	tests := []struct {
		name   string
		photos any
		want   string
	}{
		{"json matn", `[{"name": "img/a.jpg"}, {"name": "img/b.jpg"}]`, "https://re24.com.ua/img/a.jpg"},
		{"json matnli ro'yxat", []any{`[{"name": "/img/a.jpg"}]`}, "https://re24.com.ua/img/a.jpg"},
		{"obyektlar ro'yxati", []any{map[string]any{"name": "a.jpg"}}, "https://re24.com.ua/a.jpg"},
		{"http https ga ko'tariladi", []any{map[string]any{"name": "http://cdn.example.com/a.jpg"}}, "https://cdn.example.com/a.jpg"},
		{"tayyor https qoladi", []any{map[string]any{"name": "https://cdn.example.com/a.jpg"}}, "https://cdn.example.com/a.jpg"},
		{"buzuq json", `not json`, ""},
		{"bo'sh", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := map[string]any{"id": 1}
			if tt.photos != nil {
				item["photos"] = tt.photos
			}
			l := client.toListing(item)
			assert.Equal(t, tt.want, l.PhotoURL)
		})
	}
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, "https://a.com/x", cleanURL("https://a.com/x​\n"))
	assert.Equal(t, "", cleanURL("  ‌ "))
	assert.Equal(t, "a b", cleanURL(" a b "))
}
