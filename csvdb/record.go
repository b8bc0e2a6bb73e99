package csvdb

import (
	"net"
	"strconv"

	cidrman "github.com/EvilSuperstars/go-cidrman"

	"github.com/juju/errors"
)

// Record presents an extracted data from CSV record: a range of IPv4
// addresses located at the given point.
type Record struct {
	StartIP   string
	FinishIP  string
	Longitude float64
	Latitude  float64
}

// GetSubnets returns non-overlapping subnets of the given Record.
func (r *Record) GetSubnets() (subnets []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			switch x := rec.(type) {
			case string:
				err = errors.Annotate(errors.New(x), "Incorrect subnets")
			case error:
				err = errors.Annotate(x, "Incorrect subnets")
			}
		}
	}()

	subnets, err = cidrman.IPRangeToCIDRs(r.StartIP, r.FinishIP)
	return
}

// NewRecord creates new CSV record.
func NewRecord(startIP, finishIP, longitude, latitude string) (*Record, error) {
	if !ipOk(startIP) {
		return nil, errors.New("Start IP is not correct")
	}
	if !ipOk(finishIP) {
		return nil, errors.New("Finish IP is not correct")
	}

	lon, err := strconv.ParseFloat(longitude, 64)
	if err != nil || lon < -180.0 || lon > 180.0 {
		return nil, errors.Errorf("Longitude %s is not correct", longitude)
	}

	lat, err := strconv.ParseFloat(latitude, 64)
	if err != nil || lat < -90.0 || lat > 90.0 {
		return nil, errors.Errorf("Latitude %s is not correct", latitude)
	}

	return &Record{startIP, finishIP, lon, lat}, nil
}

// MakeRecord is a RecordMaker for start_ip,finish_ip,longitude,latitude
// rows.
func MakeRecord(data []string) (*Record, error) {
	if len(data) != 4 {
		return nil, errors.Errorf("Expected 4 columns, got %d", len(data))
	}

	return NewRecord(data[0], data[1], data[2], data[3])
}

func ipOk(ip string) bool {
	parsed := net.ParseIP(ip)

	return parsed != nil && parsed.To4() != nil
}
