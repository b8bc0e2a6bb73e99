package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/9seconds/relaymap/export"
	"github.com/9seconds/relaymap/relaylib"
)

func TestConfigOk(t *testing.T) {
	text := `distance = 2.5
		mode = "weight"
		workers = 16
		required_flags = ["Exit", "Fast"]
		listen = "0.0.0.0:9000"

		[geocoder]
		provider = "ip2location"
		path = "/var/lib/geo/IP2LOCATION-LITE-DB5.BIN"
		cache_size = 100

		[output]
		format = "geojson"
		path = "/tmp/map.geojson"`

	conf, err := Parse(strings.NewReader(text))
	assert.Nil(t, err)
	assert.NotNil(t, conf)

	assert.InDelta(t, conf.Distance, 2.5, 1e-6)
	assert.Equal(t, conf.AggregationMode(), relaylib.ModeWeight)
	assert.Equal(t, conf.Workers, 16)
	assert.Equal(t, conf.RequiredFlags, []string{"Exit", "Fast"})
	assert.Equal(t, conf.Listen, "0.0.0.0:9000")
	assert.Equal(t, conf.Geocoder.Provider, "ip2location")
	assert.Equal(t, conf.Geocoder.Path, "/var/lib/geo/IP2LOCATION-LITE-DB5.BIN")
	assert.Equal(t, conf.Geocoder.CacheSize, 100)
	assert.Equal(t, conf.Output.Format, export.FormatGeoJSON)
	assert.Equal(t, conf.Output.Path, "/tmp/map.geojson")
}

func TestConfigDefaults(t *testing.T) {
	conf, err := Parse(strings.NewReader(""))
	assert.Nil(t, err)
	assert.NotNil(t, conf)

	assert.InDelta(t, conf.Distance, relaylib.DefaultDistance, 1e-6)
	assert.Equal(t, conf.AggregationMode(), relaylib.ModeCount)
	assert.Equal(t, conf.Workers, relaylib.DefaultWorkerPoolSize)
	assert.Len(t, conf.RequiredFlags, 0)
	assert.Equal(t, conf.Listen, DefaultListen)
	assert.Equal(t, conf.Geocoder.Provider, DefaultProvider)
	assert.Equal(t, conf.Geocoder.CacheSize, relaylib.DefaultCacheSize)
	assert.Equal(t, conf.Output.Format, export.FormatJSON)
	assert.Equal(t, conf.Output.Path, "")
}

func TestIncorrectValues(t *testing.T) {
	for _, text := range []string{
		`distance = 0.0`,
		`distance = -1.0`,
		`mode = "sum"`,
		`workers = 0`,
		`listen = "localhost"`,
		"[geocoder]\nprovider = \"dbip\"",
		"[geocoder]\ncache_size = -1",
		"[output]\nformat = \"png\"",
		`distance = "far"`,
	} {
		_, err := Parse(strings.NewReader(text))
		assert.NotNil(t, err, text)
	}
}
