package providers

import (
	"context"
	"net"
	"os"
	"sync"

	sypex "gopkg.in/night-codes/go-sypexgeo.v1"

	"github.com/9seconds/relaymap/relaylib"
	"github.com/juju/errors"
)

// Sypex geocodes ip addresses with Sypex Geo City databases.
type Sypex struct {
	db     sypex.SxGEO
	dbLock sync.RWMutex
	opened bool
}

func (sx *Sypex) Name() string {
	return NameSypex
}

func (sx *Sypex) Lookup(ctx context.Context, ip net.IP) (relaylib.GeoPoint, error) {
	sx.dbLock.RLock()
	defer sx.dbLock.RUnlock()

	rv := relaylib.GeoPoint{}

	if !sx.opened {
		return rv, ErrDatabaseIsClosed
	}

	info, err := sx.db.GetCityFull(ip.String())
	if err != nil {
		return rv, errors.Wrap(err, relaylib.ErrLocationUnknown)
	}

	cityData, ok := info["city"]
	if !ok {
		return rv, relaylib.ErrLocationUnknown
	}

	cityMap, ok := cityData.(map[string]interface{})
	if !ok {
		return rv, relaylib.ErrLocationUnknown
	}

	lat, latOk := toFloat(cityMap["lat"])
	lon, lonOk := toFloat(cityMap["lon"])

	if !latOk || !lonOk || (lat == 0 && lon == 0) {
		return rv, relaylib.ErrLocationUnknown
	}

	rv.Longitude = lon
	rv.Latitude = lat

	return rv, nil
}

func (sx *Sypex) Close() error {
	sx.dbLock.Lock()
	defer sx.dbLock.Unlock()

	sx.opened = false

	return nil
}

// NewSypex opens a database. Sypex library panics on incorrect files,
// this panic is converted into error.
func NewSypex(path string) (rv *Sypex, err error) {
	if _, err = os.Stat(path); err != nil {
		return nil, errors.Annotatef(err, "Cannot open sypex database %s", path)
	}

	defer func() {
		if rec := recover(); rec != nil {
			rv = nil

			switch x := rec.(type) {
			case string:
				err = errors.Annotatef(errors.New(x), "Cannot open sypex database %s", path)
			case error:
				err = errors.Annotatef(x, "Cannot open sypex database %s", path)
			default:
				err = errors.Errorf("Cannot open sypex database %s: %v", path, x)
			}
		}
	}()

	return &Sypex{db: sypex.New(path), opened: true}, nil
}

func toFloat(value interface{}) (float64, bool) {
	switch x := value.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}

	return 0, false
}
