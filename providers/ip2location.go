package providers

import (
	"context"
	"net"
	"os"
	"strings"
	"sync"

	ip2location "github.com/ip2location/ip2location-go"

	"github.com/9seconds/relaymap/relaylib"
	"github.com/juju/errors"
)

const (
	ip2locationNotFound        = "-"
	ip2locationInvalidAddress  = "Invalid IP address."
	ip2locationInvalidDatabase = "Invalid database file."
	ip2locationUnavailable     = "This parameter is unavailable"

	ip2locationProbeIP = "8.8.8.8"
)

// ip2location library keeps an opened database in a package variable, so
// all instances share the same lock.
var ip2locationLock sync.Mutex

// IP2Location geocodes ip addresses with IP2Location BIN databases. Only
// one database can be opened at a time.
type IP2Location struct {
	opened bool
}

func (i2l *IP2Location) Name() string {
	return NameIP2Location
}

func (i2l *IP2Location) Lookup(ctx context.Context, ip net.IP) (relaylib.GeoPoint, error) {
	ip2locationLock.Lock()
	defer ip2locationLock.Unlock()

	rv := relaylib.GeoPoint{}

	if !i2l.opened {
		return rv, ErrDatabaseIsClosed
	}

	result := ip2location.Get_all(ip.String())

	switch {
	case result.Country_short == ip2locationInvalidDatabase:
		return rv, errors.New("Database file is corrupted")
	case result.Country_short == ip2locationInvalidAddress:
		return rv, relaylib.ErrIncorrectIP
	case result.Country_short == ip2locationNotFound,
		result.Country_short == "",
		result.Latitude == 0 && result.Longitude == 0:
		return rv, relaylib.ErrLocationUnknown
	}

	rv.Longitude = float64(result.Longitude)
	rv.Latitude = float64(result.Latitude)

	return rv, nil
}

func (i2l *IP2Location) Close() error {
	ip2locationLock.Lock()
	defer ip2locationLock.Unlock()

	if i2l.opened {
		ip2location.Close()
		i2l.opened = false
	}

	return nil
}

// NewIP2Location opens a database and checks that it is readable and
// contains coordinates.
func NewIP2Location(path string) (*IP2Location, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Annotatef(err, "Cannot open ip2location database %s", path)
	}

	ip2locationLock.Lock()
	defer ip2locationLock.Unlock()

	ip2location.Open(path)

	probe := ip2location.Get_all(ip2locationProbeIP)

	switch {
	case probe.Country_short == ip2locationInvalidDatabase:
		ip2location.Close()

		return nil, errors.Errorf("Incorrect ip2location database %s", path)
	case strings.Contains(probe.City, ip2locationUnavailable):
		ip2location.Close()

		return nil, errors.Annotatef(ErrNoCoordinates, "Database %s", path)
	}

	return &IP2Location{opened: true}, nil
}
