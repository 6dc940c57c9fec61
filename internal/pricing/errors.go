package pricing

import "errors"

// Pricing errors.
var (
	// ErrPriceUnavailable is returned when a price cannot be fetched from
	// the trading post and no usable cached value exists.
	ErrPriceUnavailable = errors.New("item price unavailable")

	// ErrUnknownItem is returned when a price is requested for an item
	// outside the fixed tradeable set.
	ErrUnknownItem = errors.New("unknown item")
)
