package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is the normalized record handed to the queue
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	TotalQuantity int             `json:"totalQuantity"`
	ReviewRating  float64         `json:"reviewRating"`
	Price         decimal.Decimal `json:"price"`    // major units
	Discount      int             `json:"discount"` // percent
	URL           string          `json:"url"`
	Image         string          `json:"image"`
}

// MarshalJSON writes price as a JSON number, the form queue consumers read
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            string      `json:"id"`
		Name          string      `json:"name"`
		Brand         string      `json:"brand"`
		TotalQuantity int         `json:"totalQuantity"`
		ReviewRating  float64     `json:"reviewRating"`
		Price         json.Number `json:"price"`
		Discount      int         `json:"discount"`
		URL           string      `json:"url"`
		Image         string      `json:"image"`
	}{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		TotalQuantity: p.TotalQuantity,
		ReviewRating:  p.ReviewRating,
		Price:         json.Number(p.Price.String()),
		Discount:      p.Discount,
		URL:           p.URL,
		Image:         p.Image,
	})
}
