package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"wbbot/parser/internal/config"
	"wbbot/parser/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageLimit = 100
	DefaultMaxCount  = 1000
)

var (
	ErrFilterNotResolved = errors.New("filter not resolved")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductDropped    = errors.New("product dropped")
)

// listing endpoint parameters, category query pairs and filters are merged on top
var listParams = map[string]string{
	"ab_testing": "false",
	"appType":    "1",
	"curr":       "rub",
	"dest":       "123586067",
	"sort":       "popular",
	"spp":        "30",
}

var detailParams = map[string]string{
	"ab_testing": "false",
	"appType":    "1",
	"curr":       "rub",
	"dest":       "-5854091",
	"spp":        "30",
}

type CatalogFetcher interface {
	ResolveFilterSet(ctx context.Context, shard, query string, filters []domain.Filter) (domain.FilterParams, error)
	FetchPage(ctx context.Context, shard, query string, skip, limit int, params domain.FilterParams) (*domain.CatalogPage, error)
	FetchAllPages(ctx context.Context, shard, query string, params domain.FilterParams, limit, maxCount int) ([]domain.RawProduct, domain.FetchReport)
	ParseAllProducts(ctx context.Context, shard, query string, filters []domain.Filter, limit, maxCount int) ([]domain.Product, domain.FetchReport)
	FetchProduct(ctx context.Context, productID string) (*domain.Product, error)
}

type catalogFetcher struct {
	client     *WBClient
	filters    FilterResolver
	listURL    string
	detailURL  string
	maxWorkers int
}

func NewCatalogFetcher(client *WBClient, filters FilterResolver, cfg config.CatalogConfig) CatalogFetcher {
	return &catalogFetcher{
		client:     client,
		filters:    filters,
		listURL:    cfg.ListURL,
		detailURL:  cfg.DetailURL,
		maxWorkers: cfg.MaxWorkers,
	}
}

// ResolveFilterSet resolves every requested filter or none: a single miss fails the set.
// A match with an empty facet key or item id is a miss.
func (f *catalogFetcher) ResolveFilterSet(ctx context.Context, shard, query string, filters []domain.Filter) (domain.FilterParams, error) {
	params := make(domain.FilterParams, len(filters))
	for _, filter := range filters {
		key, id, found := f.filters.ResolveFilter(ctx, shard, query, filter.Name, filter.Value)
		if !found || key == "" || id == "" {
			return nil, fmt.Errorf("%w: %q = %q in %s", ErrFilterNotResolved, filter.Name, filter.Value, query)
		}
		params[key] = id
	}
	return params, nil
}

func (f *catalogFetcher) FetchPage(ctx context.Context, shard, query string, skip, limit int, params domain.FilterParams) (*domain.CatalogPage, error) {
	var resp domain.CatalogResponse
	err := f.client.getJSON(ctx, request{
		url:        f.listURL,
		pathParams: map[string]string{"shard": shard},
		query:      buildListParams(query, skip, limit, params),
		noRetry:    true, // a failed page is dropped, not retried
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page skip=%d: %w", skip, err)
	}

	log.Debugf("Fetched %s skip=%d: %d products of %d", shard, skip, len(resp.Data.Products), resp.Data.Total)
	return &domain.CatalogPage{
		Skip:     skip,
		Limit:    limit,
		Total:    resp.Data.Total,
		Products: resp.Data.Products,
	}, nil
}

// FetchAllPages reads page 0 to learn the total, then the remaining pages
// concurrently. Failed pages are dropped. Products keep page submission order.
func (f *catalogFetcher) FetchAllPages(ctx context.Context, shard, query string, params domain.FilterParams, limit, maxCount int) ([]domain.RawProduct, domain.FetchReport) {
	var report domain.FetchReport
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}

	report.PagesRequested++
	first, err := f.FetchPage(ctx, shard, query, 0, limit, params)
	if err != nil {
		log.Errorf("❌ No products data received for %s (%s): %v", shard, query, err)
		report.FirstPageFailed = true
		return []domain.RawProduct{}, report
	}

	report.Total = first.Total
	if first.Total == 0 {
		log.Infof("No products found in %s (%s)", shard, query)
		return []domain.RawProduct{}, report
	}

	var skips []int
	for skip := limit; skip < min(first.Total, maxCount); skip += limit {
		skips = append(skips, skip)
	}

	pages := make([][]domain.RawProduct, len(skips))
	var failed atomic.Int32

	g := new(errgroup.Group)
	if f.maxWorkers > 0 {
		g.SetLimit(f.maxWorkers)
	}
	for i, skip := range skips {
		g.Go(func() error {
			page, err := f.FetchPage(ctx, shard, query, skip, limit, params)
			if err != nil {
				log.Warnf("⚠️ Dropping page of %s (%s): %v", shard, query, err)
				failed.Add(1)
				return nil
			}
			pages[i] = page.Products
			return nil
		})
	}
	_ = g.Wait()

	report.PagesRequested += len(skips)
	report.PagesFailed = int(failed.Load())

	products := make([]domain.RawProduct, 0, min(first.Total, maxCount))
	products = append(products, first.Products...)
	for _, page := range pages {
		if len(products) >= maxCount {
			break
		}
		products = append(products, page...)
	}
	if len(products) > maxCount {
		products = products[:maxCount]
	}

	report.RawProducts = len(products)
	return products, report
}

// ParseAllProducts resolves filters, fetches every page and normalizes the records.
// An unresolved filter yields no products at all rather than an unfiltered listing.
func (f *catalogFetcher) ParseAllProducts(ctx context.Context, shard, query string, filters []domain.Filter, limit, maxCount int) ([]domain.Product, domain.FetchReport) {
	params, err := f.ResolveFilterSet(ctx, shard, query, filters)
	if err != nil {
		log.Errorf("❌ %v, aborting category", err)
		return []domain.Product{}, domain.FetchReport{FilterUnresolved: true}
	}

	raws, report := f.FetchAllPages(ctx, shard, query, params, limit, maxCount)

	products := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		product, reason, ok := Normalize(raw)
		if !ok {
			report.Drop(reason)
			continue
		}
		products = append(products, product)
	}

	report.Products = len(products)
	return products, report
}

// FetchProduct loads a single product from the card endpoint
func (f *catalogFetcher) FetchProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := make(map[string]string, len(detailParams)+1)
	for k, v := range detailParams {
		query[k] = v
	}
	query["nm"] = productID

	var resp domain.CatalogResponse
	if err := f.client.getJSON(ctx, request{url: f.detailURL, query: query}, &resp); err != nil {
		log.Errorf("❌ Failed to fetch product %s: %v", productID, err)
		return nil, err
	}
	if len(resp.Data.Products) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	product, reason, ok := Normalize(resp.Data.Products[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s", ErrProductDropped, productID, reason)
	}
	return &product, nil
}

func buildListParams(query string, skip, limit int, filters domain.FilterParams) map[string]string {
	params := make(map[string]string, len(listParams)+len(filters)+4)
	for k, v := range listParams {
		params[k] = v
	}
	params["skip"] = strconv.Itoa(skip)
	params["limit"] = strconv.Itoa(limit)
	for _, pair := range parseQuery(query) {
		params[pair.key] = pair.value
	}
	for k, v := range filters {
		params[k] = v
	}
	return params
}
