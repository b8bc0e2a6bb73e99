package providers

import "errors"

var (
	// ErrDatabaseIsClosed returns if you are trying to lookup an ip
	// address after geocoder was closed.
	ErrDatabaseIsClosed = errors.New("database is closed")

	// ErrNoCoordinates is returned if database has no information about
	// latitude and longitude. For example, it is a country-level
	// database.
	ErrNoCoordinates = errors.New("database has no coordinates")
)
