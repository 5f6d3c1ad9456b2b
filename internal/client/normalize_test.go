package client

import (
	"encoding/json"
	"testing"

	"wbbot/parser/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscount(t *testing.T) {
	tests := []struct {
		name  string
		basic int64
		total int64
		want  int
	}{
		{name: "thirty percent", basic: 10000, total: 7000, want: 30},
		{name: "no discount", basic: 10000, total: 10000, want: 0},
		{name: "half rounds down to even", basic: 8, total: 7, want: 12},
		{name: "half rounds up to even", basic: 8, total: 5, want: 38},
		{name: "price above basic", basic: 1000, total: 1100, want: -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Discount(tt.basic, tt.total)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Discount(0, 500)
	assert.ErrorIs(t, err, ErrZeroBasicPrice)
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{id: "123456", want: "https://basket-01.wbbasket.ru/vol1/part123/123456/images/big/1.webp"},
		{id: "14312345", want: "https://basket-01.wbbasket.ru/vol143/part14312/14312345/images/big/1.webp"},
		{id: "14412345", want: "https://basket-02.wbbasket.ru/vol144/part14412/14412345/images/big/1.webp"},
		{id: "100712345", want: "https://basket-05.wbbasket.ru/vol1007/part100712/100712345/images/big/1.webp"},
		{id: "100812345", want: "https://basket-06.wbbasket.ru/vol1008/part100812/100812345/images/big/1.webp"},
		{id: "262112345", want: "https://basket-16.wbbasket.ru/vol2621/part262112/262112345/images/big/1.webp"},
		{id: "262212345", want: "https://basket-17.wbbasket.ru/vol2622/part262212/262212345/images/big/1.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ImageURL(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, _ := ImageURL(tt.id)
			assert.Equal(t, got, again)
		})
	}

	for _, id := range []string{"", "12345", "1", "12a456", "-123456"} {
		_, err := ImageURL(id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
	}
}

func rawProduct(id string, qty int, basic, total int64) domain.RawProduct {
	return domain.RawProduct{
		ID:            json.Number(id),
		Name:          "Платье",
		Brand:         "Acme",
		TotalQuantity: qty,
		ReviewRating:  4.8,
		Sizes:         []domain.RawSize{{Price: domain.RawPrice{Basic: basic, Total: total}}},
	}
}

func TestNormalize(t *testing.T) {
	product, _, ok := Normalize(rawProduct("12345678", 7, 250000, 199900))
	require.True(t, ok)

	assert.Equal(t, "12345678", product.ID)
	assert.Equal(t, "Платье", product.Name)
	assert.Equal(t, "Acme", product.Brand)
	assert.Equal(t, 7, product.TotalQuantity)
	assert.Equal(t, 4.8, product.ReviewRating)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("1999")), product.Price.String())
	assert.Equal(t, 20, product.Discount)
	assert.Equal(t, "https://www.wildberries.ru/catalog/12345678/detail.aspx", product.URL)
	assert.Equal(t, "https://basket-01.wbbasket.ru/vol123/part12345/12345678/images/big/1.webp", product.Image)

	payload, err := json.Marshal(product)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"price":1999`)
	assert.Contains(t, string(payload), `"totalQuantity":7`)
}

func TestNormalizeDrops(t *testing.T) {
	noSizes := rawProduct("12345678", 1, 100, 100)
	noSizes.Sizes = nil

	tests := []struct {
		name string
		raw  domain.RawProduct
		want domain.DropReason
	}{
		{name: "out of stock", raw: rawProduct("12345678", 0, 100, 50), want: domain.DropOutOfStock},
		{name: "zero stock wins over zero price", raw: rawProduct("12345678", 0, 0, 0), want: domain.DropOutOfStock},
		{name: "zero basic price", raw: rawProduct("12345678", 3, 0, 0), want: domain.DropZeroBasicPrice},
		{name: "no sizes", raw: noSizes, want: domain.DropMalformed},
		{name: "no id", raw: rawProduct("", 3, 100, 50), want: domain.DropMalformed},
		{name: "short id", raw: rawProduct("1234", 3, 100, 50), want: domain.DropInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reason, ok := Normalize(tt.raw)
			assert.False(t, ok)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestParseProductID(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "12345678", want: "12345678"},
		{ref: "https://www.wildberries.ru/catalog/12345678/detail.aspx", want: "12345678"},
		{ref: "https://www.wildberries.ru/catalog/12345678/detail.aspx?size=1", want: "12345678"},
		{ref: "wildberries.ru/catalog/987654", want: "987654"},
		{ref: "https://www.wildberries.ru/brands/acme", wantErr: true},
		{ref: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseProductID(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
