// Package export writes clusters in formats which map renderers can
// consume.
//
// Every cluster carries render hints: marker_size grows with log10 of
// the value and norm is a position of the value on a logarithmic scale
// between min and max of the set.
package export

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/juju/errors"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/9seconds/relaymap/relaylib"
)

const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"

	MinMarkerSize = 2.0

	markerSizeFactor = 4.0
)

type clusterJSON struct {
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	Value      uint64  `json:"value"`
	Size       int     `json:"size"`
	MarkerSize float64 `json:"marker_size"`
	Norm       float64 `json:"norm"`
}

type clusterSetJSON struct {
	Min      uint64        `json:"min"`
	Max      uint64        `json:"max"`
	Clusters []clusterJSON `json:"clusters"`
}

// MarkerSize returns a size of the marker for cluster with the given
// value.
func MarkerSize(value uint64) float64 {
	return math.Max(markerSizeFactor*math.Log10(float64(value)), MinMarkerSize)
}

// Norm maps value into [0, 1] on a logarithmic scale between min and
// max. Values below 1 are treated as 1. If scale is degenerate, Norm is 0.
func Norm(value, min, max uint64) float64 {
	low := logValue(min)
	high := logValue(max)

	if high <= low {
		return 0
	}

	norm := (logValue(value) - low) / (high - low)

	return math.Min(math.Max(norm, 0), 1)
}

func logValue(value uint64) float64 {
	if value < 1 {
		value = 1
	}

	return math.Log(float64(value))
}

// Document converts a cluster set into a JSON-friendly document.
func Document(set relaylib.ClusterSet) interface{} {
	rv := clusterSetJSON{
		Min:      set.Min,
		Max:      set.Max,
		Clusters: make([]clusterJSON, 0, len(set.Clusters)),
	}

	for _, v := range set.Clusters {
		rv.Clusters = append(rv.Clusters, clusterJSON{
			Longitude:  v.Center.Longitude,
			Latitude:   v.Center.Latitude,
			Value:      v.Value,
			Size:       v.Size,
			MarkerSize: MarkerSize(v.Value),
			Norm:       Norm(v.Value, set.Min, set.Max),
		})
	}

	return rv
}

// GeoJSON converts a cluster set into a collection of point features.
func GeoJSON(set relaylib.ClusterSet) *geojson.FeatureCollection {
	rv := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(set.Clusters)),
	}

	for i, v := range set.Clusters {
		point := geom.NewPointFlat(geom.XY, []float64{v.Center.Longitude, v.Center.Latitude})

		rv.Features = append(rv.Features, &geojson.Feature{
			ID:       strconv.Itoa(i),
			Geometry: point,
			Properties: map[string]interface{}{
				"value":       v.Value,
				"size":        v.Size,
				"marker_size": MarkerSize(v.Value),
				"norm":        Norm(v.Value, set.Min, set.Max),
			},
		})
	}

	return rv
}

func WriteJSON(w io.Writer, set relaylib.ClusterSet) error {
	return encodeJSON(w, Document(set))
}

func WriteGeoJSON(w io.Writer, set relaylib.ClusterSet) error {
	return encodeJSON(w, GeoJSON(set))
}

// Write dumps a cluster set in the given format.
func Write(w io.Writer, format string, set relaylib.ClusterSet) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, set)
	case FormatGeoJSON:
		return WriteGeoJSON(w, set)
	}

	return errors.Errorf("Unknown output format %s", format)
}

func encodeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(data); err != nil {
		return errors.Annotate(err, "Cannot encode clusters")
	}

	return nil
}
