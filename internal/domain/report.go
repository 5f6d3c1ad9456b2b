package domain

import (
	"sync"
	"time"
)

// DropReason explains why a raw record did not become a Product
type DropReason string

const (
	DropOutOfStock     DropReason = "out_of_stock"
	DropZeroBasicPrice DropReason = "zero_basic_price"
	DropMalformed      DropReason = "malformed"
	DropInvalidID      DropReason = "invalid_id"
)

// FetchReport counts what happened while parsing one category
type FetchReport struct {
	FilterUnresolved bool               `json:"filter_unresolved,omitempty"`
	FirstPageFailed  bool               `json:"first_page_failed,omitempty"`
	Total            int                `json:"total"`
	PagesRequested   int                `json:"pages_requested"`
	PagesFailed      int                `json:"pages_failed"`
	RawProducts      int                `json:"raw_products"`
	Products         int                `json:"products"`
	Dropped          map[DropReason]int `json:"dropped,omitempty"`
}

func (r *FetchReport) Drop(reason DropReason) {
	if r.Dropped == nil {
		r.Dropped = make(map[DropReason]int)
	}
	r.Dropped[reason]++
}

// CycleReport aggregates the FetchReports of one ingestion cycle
type CycleReport struct {
	ID                 string             `json:"id"`
	StartedAt          time.Time          `json:"started_at"`
	FinishedAt         time.Time          `json:"finished_at"`
	Stack              string             `json:"stack"`
	Categories         int                `json:"categories"`
	EmptyCategories    int                `json:"empty_categories"`
	FailedCategories   int                `json:"failed_categories"`
	UnresolvedFilters  int                `json:"unresolved_filters"`
	PagesRequested     int                `json:"pages_requested"`
	PagesFailed        int                `json:"pages_failed"`
	RawProducts        int                `json:"raw_products"`
	Queued             int                `json:"queued"`
	Dropped            map[DropReason]int `json:"dropped,omitempty"`
	TreeUnavailable    bool               `json:"tree_unavailable,omitempty"`
	NoCategoryMatched  bool               `json:"no_category_matched,omitempty"`

	mu sync.Mutex
}

// Add merges a category report; safe for concurrent use
func (c *CycleReport) Add(r FetchReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Categories++
	switch {
	case r.FilterUnresolved:
		c.UnresolvedFilters++
	case r.FirstPageFailed:
		c.FailedCategories++
	case r.Total == 0:
		c.EmptyCategories++
	}
	c.PagesRequested += r.PagesRequested
	c.PagesFailed += r.PagesFailed
	c.RawProducts += r.RawProducts
	for reason, n := range r.Dropped {
		if c.Dropped == nil {
			c.Dropped = make(map[DropReason]int)
		}
		c.Dropped[reason] += n
	}
}
