package relaylib

import (
	"strings"

	"github.com/juju/errors"
)

// Mode defines how clusters are valued: by a number of relays or by
// their summed bandwidth weights.
type Mode int

const (
	ModeCount Mode = iota
	ModeWeight
)

func (m Mode) String() string {
	switch m {
	case ModeCount:
		return "count"
	case ModeWeight:
		return "weight"
	}

	return "unknown"
}

// Weight returns a weight of a point built from relay with the given
// bandwidth.
func (m Mode) Weight(bandwidth uint64) uint64 {
	if m == ModeWeight {
		return bandwidth
	}

	return 1
}

// ParseMode converts a name of the mode into Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "count":
		return ModeCount, nil
	case "weight":
		return ModeWeight, nil
	}

	return ModeCount, errors.Annotatef(ErrUnknownMode, "Mode %s", name)
}

type GeoPoint struct {
	Longitude float64
	Latitude  float64
}

// WeightedPoint is a geocoded relay. Weight is either 1 or relay
// bandwidth, depending on Mode.
type WeightedPoint struct {
	Longitude float64
	Latitude  float64
	Weight    uint64
}

// Cluster is a group of points which are reachable from each other.
// Center is an unweighted mean of member coordinates; Value is either
// a number of members or a sum of their weights.
type Cluster struct {
	Center GeoPoint
	Value  uint64
	Size   int
}

// ClusterSet is a result of clustering. Min and Max are the smallest
// and the largest values of clusters.
type ClusterSet struct {
	Clusters []Cluster
	Min      uint64
	Max      uint64
}
