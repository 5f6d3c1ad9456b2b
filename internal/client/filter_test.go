package client

import (
	"context"
	"net/http"
	"testing"

	"wbbot/parser/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filtersJSON = `{"data": {"filters": [
	{"name": "Бренд", "key": "fbrand", "items": [{"name": "Acme", "id": "acme-1"}]},
	{"name": "Цвет", "key": "color", "items": [
		{"name": "Синий", "id": 5},
		{"name": "Красный", "id": 7}
	]},
	{"name": "Размер", "key": "", "items": [{"name": "42", "id": 42}]},
	{"name": "Материал", "key": "material", "items": [{"name": "Хлопок", "id": null}]}
]}}`

func filtersHandler(t *testing.T, gotQuery *map[string]string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/catalog/{shard}/v4/filters", func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			q := map[string]string{"shard": r.PathValue("shard")}
			for k := range r.URL.Query() {
				q[k] = r.URL.Query().Get(k)
			}
			*gotQuery = q
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(filtersJSON))
	})
	return mux
}

func TestResolveFilter(t *testing.T) {
	var query map[string]string
	client, cfg := newTestClient(t, filtersHandler(t, &query))
	resolver := NewFilterResolver(client, cfg.FiltersURL)
	ctx := context.Background()

	key, id, found := resolver.ResolveFilter(ctx, "women_clothes", "cat=8126&subject=69", "Цвет", "Красный")
	require.True(t, found)
	assert.Equal(t, "color", key)
	assert.Equal(t, "7", id)

	assert.Equal(t, "women_clothes", query["shard"])
	assert.Equal(t, "8126", query["cat"])
	assert.Equal(t, "-5854091", query["dest"])
	assert.Equal(t, "rub", query["curr"])

	key, id, found = resolver.ResolveFilter(ctx, "women_clothes", "cat=8126", "Бренд", "Acme")
	require.True(t, found)
	assert.Equal(t, "fbrand", key)
	assert.Equal(t, "acme-1", id)

	_, _, found = resolver.ResolveFilter(ctx, "women_clothes", "cat=8126", "Цвет", "Зелёный")
	assert.False(t, found)
}

func TestResolveFilterBadQuery(t *testing.T) {
	client, cfg := newTestClient(t, filtersHandler(t, nil))
	resolver := NewFilterResolver(client, cfg.FiltersURL)

	_, err := resolver.FetchFilters(context.Background(), "s1", "")
	assert.Error(t, err)

	_, _, found := resolver.ResolveFilter(context.Background(), "s1", "", "Цвет", "Красный")
	assert.False(t, found)
}

func TestFindFilterSearchesEveryFacetWithName(t *testing.T) {
	facets := []domain.FilterFacet{
		{Name: "Цвет", Key: "color", Items: []domain.FilterItem{{Name: "Синий", ID: "5"}}},
		{Name: "Цвет", Key: "color2", Items: []domain.FilterItem{{Name: "Красный", ID: "9"}}},
	}

	key, id, found := FindFilter(facets, "Цвет", "Красный")
	require.True(t, found)
	assert.Equal(t, "color2", key)
	assert.Equal(t, "9", id)
}

func TestCategoryID(t *testing.T) {
	tests := []struct {
		query   string
		want    string
		wantErr bool
	}{
		{query: "cat=8126", want: "8126"},
		{query: "subject=69&cat=8126", want: "69"},
		{query: "broken&cat=8126", want: "8126"},
		{query: "", wantErr: true},
		{query: "cat=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := categoryID(tt.query)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
