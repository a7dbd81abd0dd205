package service

import (
	"math"

	"github.com/shopspring/decimal"
)

const DefaultMarkupRate = 0.15

// maxTotal is the largest total an int64 can carry; higher prices are rejected.
var maxTotal = decimal.NewFromInt(math.MaxInt64)

// Quote is the customer-facing price derived from a supplier price.
type Quote struct {
	SupplierPrice decimal.Decimal
	Markup        decimal.Decimal
	Total         int64
}

// Pricer applies a fixed markup rate. Markup is rounded to cents and the total
// is rounded up to a whole unit, so Total >= SupplierPrice always holds.
type Pricer struct {
	rate decimal.Decimal
}

func NewPricer(rate float64) Pricer {
	return Pricer{rate: decimal.NewFromFloat(rate)}
}

func (p Pricer) Quote(supplierPrice float64) (Quote, error) {
	if math.IsNaN(supplierPrice) || math.IsInf(supplierPrice, 0) || supplierPrice < 0 {
		return Quote{}, ErrInvalidSupplierPrice
	}

	price := decimal.NewFromFloat(supplierPrice)
	markup := price.Mul(p.rate).Round(2)
	total := price.Add(markup).Ceil()
	if total.GreaterThan(maxTotal) {
		return Quote{}, ErrInvalidSupplierPrice
	}

	return Quote{
		SupplierPrice: price,
		Markup:        markup,
		Total:         total.IntPart(),
	}, nil
}
