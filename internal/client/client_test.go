package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wbbot/parser/internal/config"
)

func testCatalogConfig(baseURL string) config.CatalogConfig {
	return config.CatalogConfig{
		MenuURL:    baseURL + "/menu.json",
		FiltersURL: baseURL + "/catalog/{shard}/v4/filters",
		ListURL:    baseURL + "/catalog/{shard}/v2/catalog",
		DetailURL:  baseURL + "/cards/v2/detail",
		Timeout:    5 * time.Second,
		MaxWorkers: 4,
		UserAgent:  "wbparser-test",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*WBClient, config.CatalogConfig) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testCatalogConfig(server.URL)
	return NewWBClient(cfg, nil), cfg
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to write response: %v", err)
	}
}
