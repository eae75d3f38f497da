package flights

import "errors"

var (
	// ErrStoreUnavailable is returned by ListFlights when the store cannot be read.
	ErrStoreUnavailable = errors.New("flight store unavailable")

	// ErrNilFlight reports a missing add or update payload.
	ErrNilFlight = errors.New("flight payload is required")
)
