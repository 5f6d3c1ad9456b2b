package client

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"wbbot/parser/internal/domain"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	ErrZeroBasicPrice = errors.New("basic price is zero")
	ErrInvalidID      = errors.New("invalid product id")
)

const cardURLFormat = "https://www.wildberries.ru/catalog/%s/detail.aspx"

// basketShards maps the vol number of a product to its image host.
// The bounds come from the CDN and are inclusive.
var basketShards = []struct {
	maxVol int
	host   string
}{
	{143, "01"},
	{287, "02"},
	{431, "03"},
	{719, "04"},
	{1007, "05"},
	{1061, "06"},
	{1115, "07"},
	{1169, "08"},
	{1313, "09"},
	{1601, "10"},
	{1655, "11"},
	{1919, "12"},
	{2045, "13"},
	{2189, "14"},
	{2405, "15"},
	{2621, "16"},
}

const lastBasketShard = "17"

// Normalize converts a listing record into a Product. ok is false when the
// record is dropped, reason says why.
func Normalize(raw domain.RawProduct) (domain.Product, domain.DropReason, bool) {
	if raw.TotalQuantity == 0 {
		return domain.Product{}, domain.DropOutOfStock, false
	}
	id := raw.ID.String()
	if id == "" || len(raw.Sizes) == 0 {
		return domain.Product{}, domain.DropMalformed, false
	}

	price := raw.Sizes[0].Price
	discount, err := Discount(price.Basic, price.Total)
	if err != nil {
		log.Warnf("⚠️ Dropping product %s: %v", id, err)
		return domain.Product{}, domain.DropZeroBasicPrice, false
	}

	image, err := ImageURL(id)
	if err != nil {
		log.Warnf("⚠️ Dropping product %s: %v", id, err)
		return domain.Product{}, domain.DropInvalidID, false
	}

	return domain.Product{
		ID:            id,
		Name:          raw.Name,
		Brand:         raw.Brand,
		TotalQuantity: raw.TotalQuantity,
		ReviewRating:  raw.ReviewRating,
		Price:         decimal.New(price.Total, -2),
		Discount:      discount,
		URL:           CardURL(id),
		Image:         image,
	}, "", true
}

// Discount is the percentage off the basic price, rounded half to even
func Discount(basic, total int64) (int, error) {
	if basic <= 0 {
		return 0, fmt.Errorf("%w (basic=%d, total=%d)", ErrZeroBasicPrice, basic, total)
	}
	d := float64(basic-total) / float64(basic) * 100
	return int(math.RoundToEven(d)), nil
}

func CardURL(productID string) string {
	return fmt.Sprintf(cardURLFormat, productID)
}

// ImageURL builds the CDN URL of the first product photo. No network call.
func ImageURL(productID string) (string, error) {
	if !isDigits(productID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, productID)
	}
	k := len(productID) - 5
	if k <= 0 {
		return "", fmt.Errorf("%w: %q is too short", ErrInvalidID, productID)
	}

	vol := productID[:k]
	e, err := strconv.Atoi(vol)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidID, productID, err)
	}

	return fmt.Sprintf("https://basket-%s.wbbasket.ru/vol%s/part%s/%s/images/big/1.webp",
		basketHost(e), vol, productID[:k+2], productID), nil
}

func basketHost(vol int) string {
	for _, shard := range basketShards {
		if vol <= shard.maxVol {
			return shard.host
		}
	}
	return lastBasketShard
}

var cardURLRe = regexp.MustCompile(`/catalog/(\d+)(?:/|$)`)

// ParseProductID accepts a bare product id or a product card URL
func ParseProductID(ref string) (string, error) {
	if isDigits(ref) {
		return ref, nil
	}
	if m := cardURLRe.FindStringSubmatch(ref); len(m) == 2 {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: cannot extract product id from %q", ErrInvalidID, ref)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
