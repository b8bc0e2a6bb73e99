package providers

import (
	"context"
	"net"
	"strings"
	"sync"

	geoip2 "github.com/oschwald/geoip2-golang"

	"github.com/9seconds/relaymap/relaylib"
	"github.com/juju/errors"
)

// Maxmind geocodes ip addresses with MaxMind City databases.
type Maxmind struct {
	db     *geoip2.Reader
	dbLock sync.RWMutex
}

func (mm *Maxmind) Name() string {
	return NameMaxmind
}

func (mm *Maxmind) Lookup(ctx context.Context, ip net.IP) (relaylib.GeoPoint, error) {
	mm.dbLock.RLock()
	defer mm.dbLock.RUnlock()

	rv := relaylib.GeoPoint{}

	if mm.db == nil {
		return rv, ErrDatabaseIsClosed
	}

	city, err := mm.db.City(ip)
	if err != nil {
		return rv, errors.Annotate(err, "Cannot lookup this ip address")
	}

	location := city.Location
	if location.Latitude == 0 && location.Longitude == 0 && location.AccuracyRadius == 0 {
		return rv, relaylib.ErrLocationUnknown
	}

	rv.Longitude = location.Longitude
	rv.Latitude = location.Latitude

	return rv, nil
}

func (mm *Maxmind) Close() error {
	mm.dbLock.Lock()
	defer mm.dbLock.Unlock()

	if mm.db == nil {
		return nil
	}

	err := mm.db.Close()
	mm.db = nil

	return err
}

// NewMaxmind opens a database. Only databases with city precision
// are accepted.
func NewMaxmind(path string) (*Maxmind, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot open maxmind database %s", path)
	}

	dbType := db.Metadata().DatabaseType
	if !strings.Contains(dbType, "City") && !strings.Contains(dbType, "Enterprise") {
		db.Close() // nolint

		return nil, errors.Annotatef(ErrNoCoordinates, "Database %s has type %s", path, dbType)
	}

	return &Maxmind{db: db}, nil
}
