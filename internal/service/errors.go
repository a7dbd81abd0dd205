package service

import "errors"

var (
	ErrOfferIDRequired          = errors.New("offerId is required")
	ErrInvalidSupplierPrice     = errors.New("supplierPrice must be a finite, non-negative number")
	ErrHoldIDRequired           = errors.New("holdId is required")
	ErrPaymentReferenceRequired = errors.New("paymentReference is required")
	ErrHoldNotFound             = errors.New("hold expired or not found")
	ErrInvalidHoldState         = errors.New("hold is not in HELD state")
	ErrInvalidOfferQuery        = errors.New("origin, destination and departureDate are required")
	ErrOfferSearchFailed        = errors.New("offer search failed")
)

// IsValidationError reports whether err came from request validation rather than state or storage.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrOfferIDRequired) ||
		errors.Is(err, ErrInvalidSupplierPrice) ||
		errors.Is(err, ErrHoldIDRequired) ||
		errors.Is(err, ErrPaymentReferenceRequired) ||
		errors.Is(err, ErrInvalidOfferQuery)
}
