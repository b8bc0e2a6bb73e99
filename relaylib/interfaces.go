package relaylib

import (
	"context"
	"net"
)

// Geocoder resolves an IP address into a location. If location is
// unknown, Lookup returns ErrLocationUnknown. Geocoder is opened once per
// run and closed when run is over.
type Geocoder interface {
	Name() string
	Lookup(context.Context, net.IP) (GeoPoint, error)
	Close() error
}

type Logger interface {
	LookupError(ip string, name string, err error)
	StageInfo(stage string, count int)
	SkippedBlocks(count int)
}
