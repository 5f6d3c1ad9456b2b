package client

import (
	"context"
	"net/http"
	"testing"

	"wbbot/parser/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuJSON = `[
	{"name": "Root", "childs": [
		{"name": "A", "shard": "s1", "query": "q1"},
		{"name": "B", "childs": [
			{"name": "C", "shard": "s2", "query": "q2"}
		]}
	]},
	{"name": "Promo", "childs": [], "shard": "promo", "query": "cat=1"},
	{"name": "Link only"}
]`

func menuHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/menu.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(menuJSON))
	})
	return mux
}

func TestGetAllLeafCategories(t *testing.T) {
	client, cfg := newTestClient(t, menuHandler(t))
	resolver := NewCategoryResolver(client, cfg.MenuURL)

	leaves := resolver.GetAllLeafCategories(context.Background())

	assert.Equal(t, []domain.Category{
		{Shard: "s1", Query: "q1"},
		{Shard: "s2", Query: "q2"},
	}, leaves)
}

func TestFetchCategoryTreeKeepsChildsPresence(t *testing.T) {
	client, cfg := newTestClient(t, menuHandler(t))
	resolver := NewCategoryResolver(client, cfg.MenuURL)

	tree, err := resolver.FetchCategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 3)

	assert.True(t, tree[1].HasChilds(), "empty childs list is still present")
	assert.False(t, tree[1].IsLeaf())
	assert.False(t, tree[2].HasChilds())
	assert.False(t, tree[2].IsLeaf())
}

func TestGetCategoriesByNames(t *testing.T) {
	client, cfg := newTestClient(t, menuHandler(t))
	resolver := NewCategoryResolver(client, cfg.MenuURL)

	found := resolver.GetCategoriesByNames(context.Background(), []string{"B", "C", "Missing"})

	require.Len(t, found, 2)
	assert.Equal(t, "B", found[0].Name)
	assert.Equal(t, "C", found[1].Name, "children of a matched node are still searched")
}

func TestCategoryResolverFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/menu.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, cfg := newTestClient(t, mux)
	resolver := NewCategoryResolver(client, cfg.MenuURL)

	_, err := resolver.FetchCategoryTree(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)

	leaves := resolver.GetAllLeafCategories(context.Background())
	assert.NotNil(t, leaves)
	assert.Empty(t, leaves)

	nodes := resolver.GetCategoriesByNames(context.Background(), []string{"A"})
	assert.NotNil(t, nodes)
	assert.Empty(t, nodes)
}

func TestLeafCategoriesEmpty(t *testing.T) {
	assert.Empty(t, LeafCategories(nil))
	assert.Empty(t, FindByNames(nil, []string{"A"}))
}
