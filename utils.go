package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/9seconds/relaymap/api"
	"github.com/9seconds/relaymap/config"
	"github.com/9seconds/relaymap/export"
	"github.com/9seconds/relaymap/providers"
	"github.com/9seconds/relaymap/relaylib"
)

const shutdownTimeout = 5 * time.Second

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot open config %s", path)
	}
	defer file.Close() // nolint

	conf, err := config.Parse(file)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot read config %s", path)
	}

	return conf, nil
}

func applyPipelineFlags(conf *config.Config, flags pipelineFlags) {
	if *flags.geoDB != "" {
		conf.Geocoder.Path = *flags.geoDB
	}
	if *flags.distance != 0 {
		conf.Distance = *flags.distance
	}
	if *flags.weight {
		conf.Mode = relaylib.ModeWeight.String()
	}
	if *flags.provider != "" {
		conf.Geocoder.Provider = *flags.provider
	}
	if *flags.workers != 0 {
		conf.Workers = *flags.workers
	}
	if len(*flags.requiredFlags) > 0 {
		conf.RequiredFlags = *flags.requiredFlags
	}
}

func makeGeocoder(fs afero.Fs, conf config.GeocoderConfig) (relaylib.Geocoder, error) {
	var geocoder relaylib.Geocoder

	if conf.Path == "" {
		return nil, errors.New("Path to geolocation database is not set")
	}

	switch conf.Provider {
	case providers.NameMaxmind:
		db, err := providers.NewMaxmind(conf.Path)
		if err != nil {
			return nil, err
		}
		geocoder = db
	case providers.NameIP2Location:
		db, err := providers.NewIP2Location(conf.Path)
		if err != nil {
			return nil, err
		}
		geocoder = db
	case providers.NameSypex:
		db, err := providers.NewSypex(conf.Path)
		if err != nil {
			return nil, err
		}
		geocoder = db
	case providers.NameCSVDB:
		db, err := providers.NewCSVDB(fs, conf.Path)
		if err != nil {
			return nil, err
		}
		geocoder = db
	default:
		return nil, errors.Errorf("Unsupported geocoder %s", conf.Provider)
	}

	if conf.CacheSize > 0 {
		geocoder = relaylib.NewCachingGeocoder(geocoder, conf.CacheSize)
	}

	return geocoder, nil
}

func runPipeline(ctx context.Context, fs afero.Fs, conf *config.Config,
	consensusPath string) (relaylib.ClusterSet, *relaylib.Stats, error) {
	if err := config.Validate(conf); err != nil {
		return relaylib.ClusterSet{}, nil, errors.Annotate(err, "Invalid value")
	}

	geocoder, err := makeGeocoder(fs, conf.Geocoder)
	if err != nil {
		return relaylib.ClusterSet{}, nil, errors.Annotate(err, "Cannot open geolocation database")
	}
	defer geocoder.Close() // nolint

	rmap, err := relaylib.NewRelaymap(fs, geocoder, newLogger(), relaylib.Opts{
		Distance:       conf.Distance,
		Mode:           conf.AggregationMode(),
		RequiredFlags:  conf.RequiredFlags,
		WorkerPoolSize: conf.Workers,
	})
	if err != nil {
		return relaylib.ClusterSet{}, nil, err
	}

	set, err := rmap.Run(ctx, consensusPath)

	return set, rmap.Stats(), err
}

func runCluster(ctx context.Context, conf *config.Config, consensusPath string) error {
	fs := afero.NewOsFs()

	set, _, err := runPipeline(ctx, fs, conf, consensusPath)
	if err != nil {
		return err
	}

	return writeClusters(fs, conf.Output, set)
}

func writeClusters(fs afero.Fs, conf config.OutputConfig, set relaylib.ClusterSet) error {
	var writer io.Writer = os.Stdout

	if conf.Path != "" {
		file, err := fs.Create(conf.Path)
		if err != nil {
			return errors.Annotatef(err, "Cannot create output file %s", conf.Path)
		}
		defer file.Close() // nolint

		writer = file
	}

	if err := export.Write(writer, conf.Format, set); err != nil {
		return errors.Annotate(err, "Cannot write clusters")
	}

	return nil
}

func runServe(ctx context.Context, conf *config.Config, consensusPath string) error {
	set, stats, err := runPipeline(ctx, afero.NewOsFs(), conf, consensusPath)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: api.MakeServer(set, stats),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	log.WithFields(log.Fields{
		"listen":   conf.Listen,
		"clusters": len(set.Clusters),
	}).Info("Start serving")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Annotatef(err, "Cannot listen on %s", conf.Listen)
	}

	return nil
}
