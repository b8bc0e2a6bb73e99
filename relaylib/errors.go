package relaylib

import "errors"

var (
	// ErrLocationUnknown is returned by geocoders if they have no
	// location for the given ip address.
	ErrLocationUnknown = errors.New("location of ip address is unknown")

	// ErrIncorrectIP is reported for relays with addresses which cannot
	// be parsed.
	ErrIncorrectIP = errors.New("incorrect ip address")

	// ErrNoPoints is returned if there is nothing to cluster: every
	// relay was either dropped or not geocoded.
	ErrNoPoints = errors.New("no points to cluster")

	ErrIncorrectDistance = errors.New("cluster distance must be positive")
	ErrUnknownMode       = errors.New("unknown aggregation mode")
)
