package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wbbot/parser/internal/client"
	"wbbot/parser/internal/config"
	"wbbot/parser/internal/domain"
	"wbbot/parser/internal/queue"
	"wbbot/parser/internal/repository"
	"wbbot/parser/internal/state"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyAwaiting is returned when a suggested product already awaits a decision
var ErrAlreadyAwaiting = errors.New("product already awaiting a decision")

type Service struct {
	categories   client.CategoryResolver
	catalog      client.CatalogFetcher
	store        queue.Store
	stateManager state.StateManager
	archive      repository.ProductRepository // nil when the archive is disabled
	cfg          config.IngestConfig
}

func NewService(
	categories client.CategoryResolver,
	catalog client.CatalogFetcher,
	store queue.Store,
	stateManager state.StateManager,
	archive repository.ProductRepository,
	cfg config.IngestConfig,
) *Service {
	return &Service{
		categories:   categories,
		catalog:      catalog,
		store:        store,
		stateManager: stateManager,
		archive:      archive,
		cfg:          cfg,
	}
}

// RunCycle fetches the requested categories (all leaves when names is empty)
// and replaces the pending stack with the products found. A cycle that finds
// nothing still succeeds and leaves an empty stack. Only store failures and
// cancellation are returned as errors; nothing is written before all
// categories are done.
func (s *Service) RunCycle(ctx context.Context, names []string, filters []domain.Filter) (int, error) {
	report := &domain.CycleReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Stack:     s.cfg.StackName,
	}
	logger := log.WithField("cycle", report.ID)
	logger.Infof("🔄 Starting ingestion cycle (categories=%v, filters=%d)", names, len(filters))

	categories := s.resolveCategories(ctx, logger, report, names)

	results := make([][]domain.Product, len(categories))
	g := new(errgroup.Group)
	g.SetLimit(max(s.cfg.CategoryWorkers, 1))
	for i, category := range categories {
		g.Go(func() error {
			products, fetchReport := s.catalog.ParseAllProducts(ctx, category.Shard, category.Query, filters, s.cfg.PageLimit, s.cfg.MaxCount)
			report.Add(fetchReport)
			results[i] = products
			logger.Debugf("Category %s (%s): %d products, %d/%d pages failed",
				category.Shard, category.Query, len(products), fetchReport.PagesFailed, fetchReport.PagesRequested)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warnf("🛑 Cycle cancelled, nothing queued: %v", err)
		return 0, fmt.Errorf("cycle %s cancelled: %w", report.ID, err)
	}

	products := make([]domain.Product, 0)
	for _, batch := range results {
		products = append(products, batch...)
	}

	if err := s.store.CreateStack(ctx, s.cfg.StackName, products); err != nil {
		logger.Errorf("❌ Failed to queue products: %v", err)
		return 0, err
	}
	report.Queued = len(products)

	if len(products) == 0 {
		logger.Warnf("⚠️ Cycle produced no products (%d categories, %d empty, %d failed, %d with unresolved filters)",
			report.Categories, report.EmptyCategories, report.FailedCategories, report.UnresolvedFilters)
	}

	if s.archive != nil {
		if err := s.archive.SaveProducts(ctx, report.ID, products); err != nil {
			logger.Errorf("❌ Failed to archive products: %v", err)
		}
	}

	report.FinishedAt = time.Now().UTC()
	if err := s.stateManager.SaveCycleReport(ctx, report); err != nil {
		logger.Errorf("❌ Failed to save cycle report: %v", err)
	}

	logger.Infof("✅ Queued %d products into %s from %d categories (%d pages failed, dropped %v)",
		len(products), s.cfg.StackName, report.Categories, report.PagesFailed, report.Dropped)
	return len(products), nil
}

func (s *Service) resolveCategories(ctx context.Context, logger *log.Entry, report *domain.CycleReport, names []string) []domain.Category {
	tree, err := s.categories.FetchCategoryTree(ctx)
	if err != nil {
		logger.Errorf("❌ Category tree unavailable, cycle will queue nothing: %v", err)
		report.TreeUnavailable = true
		return nil
	}

	if len(names) == 0 {
		return client.LeafCategories(tree)
	}

	matched := client.FindByNames(tree, names)
	if len(matched) == 0 {
		logger.Warnf("⚠️ No category matched %v", names)
		report.NoCategoryMatched = true
		return nil
	}
	return expandLeaves(matched)
}

// expandLeaves turns matched nodes into fetchable categories: a leaf stands
// for itself, an inner node for all leaves below it. Duplicates are removed,
// first occurrence wins.
func expandLeaves(nodes []domain.CategoryNode) []domain.Category {
	seen := make(map[domain.Category]struct{})
	categories := make([]domain.Category, 0, len(nodes))
	for _, node := range nodes {
		var leaves []domain.Category
		if node.IsLeaf() {
			leaves = []domain.Category{node.Category()}
		} else {
			leaves = client.LeafCategories(node.Childs)
		}
		for _, leaf := range leaves {
			if _, ok := seen[leaf]; ok {
				continue
			}
			seen[leaf] = struct{}{}
			categories = append(categories, leaf)
		}
	}
	return categories
}

// SuggestProduct queues a single product proposed by a user and remembers who
// proposed it. A product that already awaits a decision is refused.
func (s *Service) SuggestProduct(ctx context.Context, ref, userID string) (*domain.Product, error) {
	productID, err := client.ParseProductID(ref)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.MappingKeyExists(ctx, s.store.AwaitsTable(), productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAwaiting, productID)
	}

	product, err := s.catalog.FetchProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	if err := s.store.SetMapping(ctx, product.ID, userID); err != nil {
		return nil, err
	}
	if err := s.store.PushBack(ctx, s.cfg.SuggestStackName, *product); err != nil {
		if cleanupErr := s.store.DeleteMapping(ctx, product.ID); cleanupErr != nil {
			log.Errorf("❌ Failed to clear mapping for product %s: %v", product.ID, cleanupErr)
		}
		return nil, err
	}

	log.Infof("✅ Product %s suggested by user %s", product.ID, userID)
	return product, nil
}

func (s *Service) LastReport(ctx context.Context) (*domain.CycleReport, error) {
	return s.stateManager.GetLastCycleReport(ctx)
}

// Moderate takes the head of the pending stack. An accepted product moves to
// the tail of the ready stack, a rejected one is discarded. Any awaiting
// user mapping for it is cleared. Returns nil when the pending stack is empty.
func (s *Service) Moderate(ctx context.Context, accept bool) (*domain.Product, error) {
	product, err := s.store.PopFront(ctx, s.cfg.StackName)
	if err != nil || product == nil {
		return nil, err
	}

	if accept {
		if err := s.store.PushBack(ctx, s.cfg.ReadyStackName, *product); err != nil {
			// put it back where it was so it is not lost
			if restoreErr := s.store.PushFront(ctx, s.cfg.StackName, *product); restoreErr != nil {
				log.Errorf("❌ Failed to restore product %s to %s: %v", product.ID, s.cfg.StackName, restoreErr)
			}
			return nil, err
		}
	}

	if err := s.store.DeleteMapping(ctx, product.ID); err != nil {
		log.Warnf("⚠️ Failed to clear mapping for product %s: %v", product.ID, err)
	}

	verdict := "rejected"
	if accept {
		verdict = "accepted"
	}
	log.Infof("✅ Product %s %s", product.ID, verdict)
	return product, nil
}
