package client

import (
	"context"

	"wbbot/parser/internal/domain"

	log "github.com/sirupsen/logrus"
)

type CategoryResolver interface {
	FetchCategoryTree(ctx context.Context) ([]domain.CategoryNode, error)
	GetAllLeafCategories(ctx context.Context) []domain.Category
	GetCategoriesByNames(ctx context.Context, names []string) []domain.CategoryNode
}

type categoryResolver struct {
	client  *WBClient
	menuURL string
}

func NewCategoryResolver(client *WBClient, menuURL string) CategoryResolver {
	return &categoryResolver{
		client:  client,
		menuURL: menuURL,
	}
}

func (r *categoryResolver) FetchCategoryTree(ctx context.Context) ([]domain.CategoryNode, error) {
	var tree []domain.CategoryNode
	if err := r.client.getJSON(ctx, request{url: r.menuURL}, &tree); err != nil {
		log.Errorf("❌ Failed to fetch category tree: %v", err)
		return nil, err
	}

	log.Debugf("Fetched category tree with %d top-level nodes", len(tree))
	return tree, nil
}

func (r *categoryResolver) GetAllLeafCategories(ctx context.Context) []domain.Category {
	tree, err := r.FetchCategoryTree(ctx)
	if err != nil {
		return []domain.Category{}
	}
	return LeafCategories(tree)
}

func (r *categoryResolver) GetCategoriesByNames(ctx context.Context, names []string) []domain.CategoryNode {
	tree, err := r.FetchCategoryTree(ctx)
	if err != nil {
		return []domain.CategoryNode{}
	}
	return FindByNames(tree, names)
}

// LeafCategories walks the tree depth-first in child order
func LeafCategories(nodes []domain.CategoryNode) []domain.Category {
	leaves := make([]domain.Category, 0)
	for _, node := range nodes {
		if node.HasChilds() {
			leaves = append(leaves, LeafCategories(node.Childs)...)
			continue
		}
		if node.IsLeaf() {
			leaves = append(leaves, node.Category())
		}
	}
	return leaves
}

// FindByNames collects every node whose name is in names, at any depth.
// Children of a matched node are still searched.
func FindByNames(nodes []domain.CategoryNode, names []string) []domain.CategoryNode {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	found := make([]domain.CategoryNode, 0)
	var walk func([]domain.CategoryNode)
	walk = func(nodes []domain.CategoryNode) {
		for _, node := range nodes {
			if _, ok := wanted[node.Name]; ok {
				found = append(found, node)
			}
			if node.HasChilds() {
				walk(node.Childs)
			}
		}
	}
	walk(nodes)

	return found
}
