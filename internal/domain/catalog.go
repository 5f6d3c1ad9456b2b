package domain

import "encoding/json"

// CategoryNode is one entry of the catalog menu tree
type CategoryNode struct {
	Name   string         `json:"name"`
	Childs []CategoryNode `json:"childs,omitempty"` // nil when the key is absent, non-nil (maybe empty) when present, even as null
	Shard  string         `json:"shard,omitempty"`
	Query  string         `json:"query,omitempty"`
}

// HasChilds reports whether the node carried a "childs" key. Such a node is never a leaf.
func (n CategoryNode) HasChilds() bool {
	return n.Childs != nil
}

// IsLeaf reports whether products can be listed directly for this node
func (n CategoryNode) IsLeaf() bool {
	return !n.HasChilds() && n.Shard != "" && n.Query != ""
}

// Category is a fetchable (shard, query) pair
type Category struct {
	Shard string `json:"shard"`
	Query string `json:"query"`
}

// UnmarshalJSON records a "childs" key even when its value is null
func (n *CategoryNode) UnmarshalJSON(b []byte) error {
	type node CategoryNode
	var raw struct {
		node
		Childs json.RawMessage `json:"childs"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*n = CategoryNode(raw.node)
	if raw.Childs == nil {
		return nil
	}
	n.Childs = []CategoryNode{}
	if string(raw.Childs) != "null" {
		if err := json.Unmarshal(raw.Childs, &n.Childs); err != nil {
			return err
		}
	}
	return nil
}

func (n CategoryNode) Category() Category {
	return Category{Shard: n.Shard, Query: n.Query}
}

type RawPrice struct {
	Basic int64 `json:"basic"` // minor units
	Total int64 `json:"total"` // minor units
}

type RawSize struct {
	Price RawPrice `json:"price"`
}

// RawProduct is a listing record as returned by the catalog
type RawProduct struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"name"`
	Brand         string      `json:"brand"`
	TotalQuantity int         `json:"totalQuantity"`
	ReviewRating  float64     `json:"reviewRating"`
	Sizes         []RawSize   `json:"sizes"`
}

// CatalogPage is one page of the listing endpoint
type CatalogPage struct {
	Skip     int          `json:"skip"`
	Limit    int          `json:"limit"`
	Total    int          `json:"total"`
	Products []RawProduct `json:"products"`
}

// CatalogResponse is the envelope shared by the listing and card-detail endpoints
type CatalogResponse struct {
	Data struct {
		Total    int          `json:"total"`
		Products []RawProduct `json:"products"`
	} `json:"data"`
}
