package relaylib

import (
	"context"

	"github.com/juju/errors"
	"github.com/spf13/afero"

	"github.com/9seconds/relaymap/consensus"
)

const (
	StageParse    = "parse"
	StageFilter   = "filter"
	StageGeocode  = "geocode"
	StageClusters = "cluster"
)

// Opts defines how Relaymap builds clusters.
type Opts struct {
	// Distance is a maximal distance between neighbour points in
	// degrees. DefaultDistance is used if zero.
	Distance float64

	Mode           Mode
	RequiredFlags  []string
	WorkerPoolSize int
}

// Relaymap runs a pipeline: consensus document -> records -> geocoded
// points -> clusters.
type Relaymap struct {
	fs            afero.Fs
	logger        Logger
	builder       *PointBuilder
	stats         *Stats
	distance      float64
	mode          Mode
	requiredFlags []string
}

// Run builds clusters out of the consensus document at path. It fails if
// the document cannot be read or if none of relays can be geocoded.
func (r *Relaymap) Run(ctx context.Context, path string) (ClusterSet, error) {
	r.stats.Started()

	records, err := r.readRecords(path)
	if err != nil {
		return ClusterSet{}, err
	}

	records = r.filterRecords(records)

	points, err := r.builder.Build(ctx, records)
	if err != nil {
		return ClusterSet{}, errors.Annotate(err, "Cannot geocode relays")
	}

	r.stats.Geocoded(len(points), len(records)-len(points))
	r.logger.StageInfo(StageGeocode, len(points))

	if len(points) == 0 {
		return ClusterSet{}, errors.Annotatef(ErrNoPoints, "None of %d relays from %s was geocoded",
			len(records), path)
	}

	clusters, err := Clusterize(points, r.distance, r.mode)
	if err != nil {
		return ClusterSet{}, errors.Annotate(err, "Cannot clusterize points")
	}

	r.stats.Clustered(len(clusters.Clusters))
	r.logger.StageInfo(StageClusters, len(clusters.Clusters))

	return clusters, nil
}

// Stats returns figures of the last run.
func (r *Relaymap) Stats() *Stats {
	return r.stats
}

func (r *Relaymap) readRecords(path string) ([]*consensus.Record, error) {
	file, err := r.fs.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot open consensus %s", path)
	}
	defer file.Close() // nolint

	records, skipped, err := consensus.ReadAll(file)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot parse consensus %s", path)
	}

	r.stats.Parsed(len(records), skipped)
	r.logger.StageInfo(StageParse, len(records))

	if skipped > 0 {
		r.logger.SkippedBlocks(skipped)
	}

	return records, nil
}

func (r *Relaymap) filterRecords(records []*consensus.Record) []*consensus.Record {
	if len(r.requiredFlags) == 0 {
		return records
	}

	rv := make([]*consensus.Record, 0, len(records))

	for _, v := range records {
		if v.HasFlags(r.requiredFlags) {
			rv = append(rv, v)
		}
	}

	r.stats.Filtered(len(records) - len(rv))
	r.logger.StageInfo(StageFilter, len(rv))

	return rv
}

func NewRelaymap(fs afero.Fs, geocoder Geocoder, logger Logger, opts Opts) (*Relaymap, error) {
	distance := opts.Distance
	if distance == 0 {
		distance = DefaultDistance
	}

	if err := validateDistance(distance); err != nil {
		return nil, err
	}

	if opts.Mode != ModeCount && opts.Mode != ModeWeight {
		return nil, errors.Annotatef(ErrUnknownMode, "Mode %d", opts.Mode)
	}

	return &Relaymap{
		fs:            fs,
		logger:        logger,
		builder:       NewPointBuilder(geocoder, logger, opts.Mode, opts.WorkerPoolSize),
		stats:         &Stats{},
		distance:      distance,
		mode:          opts.Mode,
		requiredFlags: opts.RequiredFlags,
	}, nil
}
