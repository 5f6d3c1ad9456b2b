package client

import (
	"context"
	"fmt"
	"strings"

	"wbbot/parser/internal/domain"

	log "github.com/sirupsen/logrus"
)

// filters endpoint parameters other than the category id
var filterParams = map[string]string{
	"ab_testing": "false",
	"appType":    "1",
	"curr":       "rub",
	"dest":       "-5854091",
	"spp":        "30",
}

type FilterResolver interface {
	FetchFilters(ctx context.Context, shard, query string) ([]domain.FilterFacet, error)
	ResolveFilter(ctx context.Context, shard, query, filterName, valueName string) (key, id string, found bool)
}

type filterResolver struct {
	client     *WBClient
	filtersURL string
}

func NewFilterResolver(client *WBClient, filtersURL string) FilterResolver {
	return &filterResolver{
		client:     client,
		filtersURL: filtersURL,
	}
}

func (r *filterResolver) FetchFilters(ctx context.Context, shard, query string) ([]domain.FilterFacet, error) {
	cat, err := categoryID(query)
	if err != nil {
		return nil, err
	}

	params := make(map[string]string, len(filterParams)+1)
	for k, v := range filterParams {
		params[k] = v
	}
	params["cat"] = cat

	var resp domain.FiltersResponse
	err = r.client.getJSON(ctx, request{
		url:        r.filtersURL,
		pathParams: map[string]string{"shard": shard},
		query:      params,
	}, &resp)
	if err != nil {
		log.Errorf("❌ Failed to fetch filters for %s (%s): %v", shard, query, err)
		return nil, err
	}

	return resp.Data.Filters, nil
}

func (r *filterResolver) ResolveFilter(ctx context.Context, shard, query, filterName, valueName string) (string, string, bool) {
	facets, err := r.FetchFilters(ctx, shard, query)
	if err != nil {
		return "", "", false
	}
	return FindFilter(facets, filterName, valueName)
}

// FindFilter returns the key of the first facet named filterName and the id
// of its first item named valueName
func FindFilter(facets []domain.FilterFacet, filterName, valueName string) (string, string, bool) {
	for _, facet := range facets {
		if facet.Name != filterName {
			continue
		}
		for _, item := range facet.Items {
			if item.Name == valueName {
				return facet.Key, item.ID.String(), true
			}
		}
	}
	return "", "", false
}

// categoryID is the value of the first key=value pair of a category query,
// "cat=8126" -> "8126"
func categoryID(query string) (string, error) {
	pairs := parseQuery(query)
	if len(pairs) == 0 || pairs[0].value == "" {
		return "", fmt.Errorf("no category id in query %q", query)
	}
	return pairs[0].value, nil
}

type queryPair struct {
	key   string
	value string
}

// parseQuery splits an ampersand-joined key=value string, keeping order
func parseQuery(query string) []queryPair {
	pairs := make([]queryPair, 0)
	for _, item := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			continue
		}
		pairs = append(pairs, queryPair{key: key, value: value})
	}
	return pairs
}
