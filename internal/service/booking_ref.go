package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const bookingRefPrefix = "LXT-"

// BookingRefGenerator produces references handed back on a successful confirmation.
type BookingRefGenerator func() (string, error)

var bookingRefSpan = big.NewInt(900000)

// NewBookingRef returns LXT- followed by a random six-digit number without a leading zero.
func NewBookingRef() (string, error) {
	n, err := rand.Int(rand.Reader, bookingRefSpan)
	if err != nil {
		return "", fmt.Errorf("generate booking ref: %w", err)
	}
	return fmt.Sprintf("%s%06d", bookingRefPrefix, n.Int64()+100000), nil
}
