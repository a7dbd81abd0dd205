package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type HoldStatus string

const (
	HoldStatusHeld   HoldStatus = "HELD"
	HoldStatusBooked HoldStatus = "BOOKED"
)

// HoldKeyPrefix is part of the external contract: operators inspect holds under hold:{id}.
const HoldKeyPrefix = "hold:"

// Hold is a time-bounded reservation of a priced offer pending payment confirmation.
type Hold struct {
	ID            string          `json:"holdId"`
	UserID        string          `json:"userId,omitempty"`
	OfferID       string          `json:"offerId"`
	SupplierPrice decimal.Decimal `json:"supplierPrice"`
	Markup        decimal.Decimal `json:"markup"`
	Total         int64           `json:"total"`
	Status        HoldStatus      `json:"status"`
	BookingRef    string          `json:"bookingRef,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// HoldKey returns the storage key for a hold id.
func HoldKey(holdID string) string {
	return HoldKeyPrefix + holdID
}
