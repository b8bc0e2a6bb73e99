package config

import (
	"io"
	"net"

	"github.com/BurntSushi/toml"
	"github.com/juju/errors"

	"github.com/9seconds/relaymap/export"
	"github.com/9seconds/relaymap/providers"
	"github.com/9seconds/relaymap/relaylib"
)

const (
	DefaultProvider = providers.NameMaxmind
	DefaultListen   = "127.0.0.1:8080"
)

var ValidProviders = map[string]bool{
	providers.NameMaxmind:     true,
	providers.NameIP2Location: true,
	providers.NameSypex:       true,
	providers.NameCSVDB:       true,
}

var ValidFormats = map[string]bool{
	export.FormatJSON:    true,
	export.FormatGeoJSON: true,
}

type GeocoderConfig struct {
	Provider  string `toml:"provider"`
	Path      string `toml:"path"`
	CacheSize int    `toml:"cache_size"`
}

type OutputConfig struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type Config struct {
	Distance      float64        `toml:"distance"`
	Mode          string         `toml:"mode"`
	Workers       int            `toml:"workers"`
	RequiredFlags []string       `toml:"required_flags"`
	Listen        string         `toml:"listen"`
	Geocoder      GeocoderConfig `toml:"geocoder"`
	Output        OutputConfig   `toml:"output"`
}

// AggregationMode returns a parsed mode. Config is expected to be
// validated.
func (c *Config) AggregationMode() relaylib.Mode {
	mode, _ := relaylib.ParseMode(c.Mode)

	return mode
}

// Default returns a configuration which is used if no file is given.
func Default() *Config {
	return &Config{
		Distance: relaylib.DefaultDistance,
		Mode:     relaylib.ModeCount.String(),
		Workers:  relaylib.DefaultWorkerPoolSize,
		Listen:   DefaultListen,
		Geocoder: GeocoderConfig{
			Provider:  DefaultProvider,
			CacheSize: relaylib.DefaultCacheSize,
		},
		Output: OutputConfig{
			Format: export.FormatJSON,
		},
	}
}

func Parse(reader io.Reader) (*Config, error) {
	conf := Default()

	if _, err := toml.DecodeReader(reader, conf); err != nil {
		return nil, errors.Annotate(err, "Cannot parse config file")
	}

	if err := Validate(conf); err != nil {
		return nil, errors.Annotate(err, "Invalid value")
	}

	return conf, nil
}

func Validate(conf *Config) error {
	if !(conf.Distance > 0) {
		return errors.Errorf("Incorrect distance %f", conf.Distance)
	}

	if _, err := relaylib.ParseMode(conf.Mode); err != nil {
		return err
	}

	if conf.Workers <= 0 {
		return errors.Errorf("Incorrect number of workers %d", conf.Workers)
	}

	if conf.Geocoder.CacheSize < 0 {
		return errors.Errorf("Incorrect cache size %d", conf.Geocoder.CacheSize)
	}

	if _, ok := ValidProviders[conf.Geocoder.Provider]; !ok {
		return errors.Errorf("Unknown geocoder %s", conf.Geocoder.Provider)
	}

	if _, ok := ValidFormats[conf.Output.Format]; !ok {
		return errors.Errorf("Unknown output format %s", conf.Output.Format)
	}

	if _, _, err := net.SplitHostPort(conf.Listen); err != nil {
		return errors.Annotatef(err, "Incorrect host:port for listen %s", conf.Listen)
	}

	return nil
}
