package dataflows

import "errors"

var (
	// ErrNetworkFailure is returned when the movers page cannot be fetched or
	// answers with a non-2xx status.
	ErrNetworkFailure = errors.New("network failure")
	// ErrStructureNotFound is returned when the fetched page has no table,
	// no tbody or no rows.
	ErrStructureNotFound = errors.New("table structure not found")

	ErrUnknownCommodity = errors.New("unknown commodity")
	ErrNoData           = errors.New("no data available")
	ErrTransport        = errors.New("transport error")
)
